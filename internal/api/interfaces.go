package api

import (
	"context"

	"github.com/ytaudio/ytaudio/internal/media"
)

// Extractor is the slice of the extraction adapter the HTTP layer consumes.
// Handlers never reach past it to the tool driver.
type Extractor interface {
	FetchMetadata(ctx context.Context, url string) (*media.Metadata, error)
	FetchAudio(ctx context.Context, url, destDir string) (*media.Artifact, error)
}
