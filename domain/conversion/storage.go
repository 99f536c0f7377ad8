package conversion

// Workspace is a private scratch directory owned by a single conversion
type Workspace interface {
	Path() string
	// Release removes the directory and everything in it. Safe to call more than once.
	Release() error
}

// WorkspaceProvider hands out fresh workspaces
type WorkspaceProvider interface {
	Acquire() (Workspace, error)
}

// ArtifactLocator finds the file the tool chain produced
type ArtifactLocator interface {
	// Locate returns the path of the newest file in dir with extension ext
	Locate(dir, ext string) (string, error)
}

// OutputPlacer moves produced files into stable storage
type OutputPlacer interface {
	Place(src, title, ext string) (*Placement, error)
}

// Placement describes a file after it was moved into stable storage
type Placement struct {
	Path string
	Name string
	Size int64
}
