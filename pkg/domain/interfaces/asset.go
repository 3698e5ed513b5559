package interfaces

import "context"

// AssetStore keeps uploaded binary assets (images shown by image fields)
type AssetStore interface {
	// Put stores data under name and returns the URL clients use to fetch it.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Get returns the content and content type of a stored asset.
	Get(ctx context.Context, name string) ([]byte, string, error)
}
