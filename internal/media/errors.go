package media

import "fmt"

// ExtractionError reports a failure from the extraction tool or its driver.
// Output carries the tool's trimmed stderr when one was captured.
type ExtractionError struct {
	Err    error
	Output string
}

func (e *ExtractionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Output)
	}
	return e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ArtifactMissingError reports that the tool finished without error but the
// expected output file is absent from the scratch directory.
type ArtifactMissingError struct {
	Path string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("expected audio artifact missing: %s", e.Path)
}
