// Package filesystem implements the local-disk adapters: finding the tool
// chain's output and moving it into the shared output directory.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"yt2mp3/domain/conversion"
	"yt2mp3/domain/retention"
)

// DefaultOutputDirName is the output directory created under the system temp dir
const DefaultOutputDirName = "yt2mp3_downloads"

// DefaultOutputDir returns the output directory used when none is configured
func DefaultOutputDir() string {
	return filepath.Join(os.TempDir(), DefaultOutputDirName)
}

// OutputStore implements conversion.OutputPlacer for a local directory
type OutputStore struct {
	dir string
}

// NewOutputStore creates a store rooted at dir, or DefaultOutputDir if empty
func NewOutputStore(dir string) *OutputStore {
	if dir == "" {
		dir = DefaultOutputDir()
	}
	return &OutputStore{dir: dir}
}

// Dir returns the output directory
func (s *OutputStore) Dir() string {
	return s.dir
}

// EnsureDir creates the output directory if it does not exist
func (s *OutputStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Place moves src into the output directory under a fresh delivered name
func (s *OutputStore) Place(src, title, ext string) (*conversion.Placement, error) {
	if err := s.EnsureDir(); err != nil {
		return nil, fmt.Errorf("%w: %v", conversion.ErrRelocationFailed, err)
	}

	name := conversion.DeliveredName(conversion.NewDeliveryID(), title, ext)
	dst := filepath.Join(s.dir, name)

	if err := Move(src, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", conversion.ErrRelocationFailed, err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", conversion.ErrRelocationFailed, err)
	}

	return &conversion.Placement{Path: dst, Name: name, Size: info.Size()}, nil
}

// List returns the regular files in the output directory, oldest first.
// A missing directory yields an empty list.
func (s *OutputStore) List() ([]retention.StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list output directory: %w", err)
	}

	files := make([]retention.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, retention.StoredFile{
			Name:    entry.Name(),
			Path:    filepath.Join(s.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// Remove deletes a file from the output directory by name
func (s *OutputStore) Remove(name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Move renames src to dst, copying across filesystems when a rename is not possible
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	in.Close()
	return os.Remove(src)
}

var (
	_ conversion.OutputPlacer = (*OutputStore)(nil)
	_ retention.Store         = (*OutputStore)(nil)
)
