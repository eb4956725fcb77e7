package summarizer

import (
	"context"
	"errors"
	"fmt"
)

// EmptySummary is returned when the model answers successfully but with no text.
const EmptySummary = "No summary generated."

// ErrConfiguration means the API credential is missing.
var ErrConfiguration = errors.New("api key is missing")

// UpstreamError wraps a failure of the external model call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Summarizer turns a raw call transcript into markdown case notes.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
