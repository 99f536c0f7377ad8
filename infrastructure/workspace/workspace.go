// Package workspace creates and removes the per-request scratch directories
// the extraction tool chain writes into.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"yt2mp3/domain/conversion"
	"yt2mp3/infrastructure/logfields"
)

// DefaultPrefix is prepended to every workspace directory name
const DefaultPrefix = "yt2mp3_"

// Manager creates uniquely named workspaces under a root directory
type Manager struct {
	root   string
	prefix string
	logger *slog.Logger
}

// Option is a functional option for configuring Manager
type Option func(*Manager)

// WithPrefix sets the directory name prefix
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithLogger sets the logger used for lifecycle messages
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a workspace manager rooted at root, or the system temp dir if empty
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root:   root,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the directory workspaces are created under
func (m *Manager) Root() string {
	if m.root == "" {
		return os.TempDir()
	}
	return m.root
}

// Acquire creates a new, empty workspace
func (m *Manager) Acquire() (conversion.Workspace, error) {
	ws, err := m.Create()
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// Create creates a new, empty workspace and returns the concrete type
func (m *Manager) Create() (*Workspace, error) {
	root := m.Root()
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create workspace root: %v", conversion.ErrWorkspace, err)
	}

	dir, err := os.MkdirTemp(root, m.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", conversion.ErrWorkspace, err)
	}

	m.logger.Debug("Created workspace", logfields.Path(dir))
	return &Workspace{path: dir, logger: m.logger}, nil
}

// Workspace is a directory owned by exactly one request
type Workspace struct {
	path   string
	logger *slog.Logger

	once sync.Once
	err  error
}

// Path returns the workspace directory
func (w *Workspace) Path() string {
	return w.path
}

// Release removes the workspace and all of its contents
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.path); err != nil {
			w.err = fmt.Errorf("failed to remove workspace: %w", err)
			w.logger.Warn("Workspace cleanup failed", logfields.Path(w.path), logfields.Error(err))
			return
		}
		w.logger.Debug("Removed workspace", logfields.Path(w.path))
	})
	return w.err
}

var (
	_ conversion.WorkspaceProvider = (*Manager)(nil)
	_ conversion.Workspace         = (*Workspace)(nil)
)
