package conversion

import "context"

// AudioDownloader defines the interface for the extraction tool chain.
// This is a port that can be implemented by different infrastructure adapters
type AudioDownloader interface {
	// Download fetches the source's audio, converts it per the request and writes it into dir
	Download(ctx context.Context, req *Request, dir string) (*SourceInfo, error)
}
