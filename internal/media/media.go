// Package media wraps the external extraction tooling, yt-dlp and its ffmpeg
// postprocessor, behind two operations: metadata lookup and audio download.
// The tool vocabulary (format selector, codec, quality, output naming) is
// fixed here and never caller-configurable.
package media

// Fallbacks applied when the extractor returns no usable value for a field.
const (
	FallbackTitle    = "Unknown"
	FallbackUploader = "Unknown"

	// fallbackAudioTitle names the download when the extractor reports no
	// title for an audio request.
	fallbackAudioTitle = "audio"
)

// Fixed extraction settings.
const (
	formatSelector = "bestaudio/best"
	audioFormat    = "mp3"
	audioQuality   = "192K"

	// outputTemplate places the pre-transcode download inside the scratch
	// directory under a constant stem.
	outputTemplate = "audio.%(ext)s"

	// ArtifactName is the transcoded file the postprocessor leaves behind.
	ArtifactName = "audio.mp3"
)

// Metadata is the normalized description of a video.
type Metadata struct {
	Title     string `json:"title"`
	Duration  int64  `json:"duration"`
	Thumbnail string `json:"thumbnail"`
	Uploader  string `json:"uploader"`
	URL       string `json:"url"`
}

// Artifact describes a transcoded audio file produced for a download request.
// Path stays valid only until the owning scratch directory is released.
type Artifact struct {
	Title string
	Path  string
	Size  int64
}
