package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"
)

// requiredTools are the external binaries extraction shells out to. ffmpeg is
// not invoked directly; yt-dlp's postprocessor calls it for the MP3 transcode.
var requiredTools = []string{"yt-dlp", "ffmpeg"}

// progressInterval throttles download progress log lines.
const progressInterval = time.Second

// Extractor drives yt-dlp through github.com/lrstanley/go-ytdlp. A single
// instance is shared across requests; it holds no per-request state.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns an Extractor that logs through the given logger.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// CheckTools verifies that the extraction binaries are present on PATH. The
// service can start without them; extraction requests will fail until they
// are installed.
func CheckTools() error {
	return lookupTools(requiredTools...)
}

func lookupTools(tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FetchMetadata resolves url to its normalized metadata without downloading
// anything. A single attempt is made; any tool failure surfaces as an
// *ExtractionError.
func (e *Extractor) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		FlatPlaylist().
		SkipDownload().
		DumpSingleJSON()

	e.logger.Debug("fetching video metadata", zap.String("url", url))

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, extractionError(err, result)
	}

	entries, err := result.GetExtractedInfo()
	if err != nil {
		return nil, extractionError(fmt.Errorf("parsing extractor output: %w", err), result)
	}
	if len(entries) == 0 {
		return nil, extractionError(errors.New("extractor produced no entries"), result)
	}

	meta := normalizeMetadata(entries[0], url)
	e.logger.Info("video metadata resolved",
		zap.String("url", url),
		zap.String("title", meta.Title),
		zap.Int64("duration", meta.Duration),
	)
	return meta, nil
}

// FetchAudio downloads the best audio stream for url into destDir and has the
// postprocessor transcode it to MP3. The artifact is written under a fixed
// name so its presence can be verified once the tool reports success.
func (e *Extractor) FetchAudio(ctx context.Context, url, destDir string) (*Artifact, error) {
	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		Format(formatSelector).
		ExtractAudio().
		AudioFormat(audioFormat).
		AudioQuality(audioQuality).
		PrintJSON().
		Output(filepath.Join(destDir, outputTemplate))

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		if update.TotalBytes > 0 {
			e.logger.Debug("download progress",
				zap.String("url", url),
				zap.Float64("percent", float64(update.DownloadedBytes)/float64(update.TotalBytes)*100),
			)
		}
	})

	e.logger.Info("downloading audio", zap.String("url", url))

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, extractionError(err, result)
	}

	title := fallbackAudioTitle
	if entries, err := result.GetExtractedInfo(); err == nil && len(entries) > 0 {
		if t := entries[0].Title; t != nil && *t != "" {
			title = *t
		}
	}

	path := ArtifactPath(destDir)
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ArtifactMissingError{Path: path}
		}
		return nil, fmt.Errorf("checking audio artifact: %w", err)
	}

	e.logger.Info("audio downloaded",
		zap.String("url", url),
		zap.String("title", title),
		zap.Int64("bytes", fi.Size()),
	)
	return &Artifact{Title: title, Path: path, Size: fi.Size()}, nil
}

// ArtifactPath returns where the transcoded artifact is written inside dir.
func ArtifactPath(dir string) string {
	return filepath.Join(dir, ArtifactName)
}

// normalizeMetadata applies the documented fallbacks to a raw extractor
// entry. Missing upstream fields never fail a lookup.
func normalizeMetadata(info *ytdlp.ExtractedInfo, url string) *Metadata {
	meta := &Metadata{
		Title:    FallbackTitle,
		Uploader: FallbackUploader,
		URL:      url,
	}
	if info == nil {
		return meta
	}
	if info.Title != nil && *info.Title != "" {
		meta.Title = *info.Title
	}
	if info.Duration != nil && *info.Duration > 0 {
		meta.Duration = int64(*info.Duration)
	}
	if info.Thumbnail != nil {
		meta.Thumbnail = *info.Thumbnail
	}
	if info.Uploader != nil && *info.Uploader != "" {
		meta.Uploader = *info.Uploader
	}
	return meta
}

func extractionError(err error, result *ytdlp.Result) error {
	output := ""
	if result != nil {
		output = strings.TrimSpace(result.Stderr)
	}
	return &ExtractionError{Err: err, Output: output}
}
