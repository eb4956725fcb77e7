package session

import (
	"callnotes/internal/domain"
	"callnotes/internal/summarizer"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FailureMessage is the only error text ever shown to the user.
const FailureMessage = "Failed to generate summary. Please try again."

var (
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrBusy            = errors.New("summary request is already in progress")
)

// Session holds the view state of the single page and runs at most one
// summarization at a time.
type Session struct {
	summarizer summarizer.Summarizer
	log        *slog.Logger

	mu       sync.Mutex
	snapshot domain.Snapshot
	inFlight sync.WaitGroup
}

func New(s summarizer.Summarizer, log *slog.Logger) *Session {
	return &Session{
		summarizer: s,
		log:        log,
		snapshot:   domain.Snapshot{State: domain.StateIdle},
	}
}

func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot
}

// SetTranscript stores draft input without submitting it. Drafts are
// ignored while a request is loading so the view keeps showing what was sent.
func (s *Session) SetTranscript(transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.State == domain.StateLoading {
		return
	}
	s.snapshot.Transcript = transcript
}

// Submit moves the session to Loading and starts summarizing transcript in
// the background. The returned channel is closed once the outcome is stored.
// Blank input and calls made while Loading are rejected without side effects.
//
// The background call is detached from ctx cancellation: it runs until the
// summarizer itself returns.
func (s *Session) Submit(ctx context.Context, transcript string) (<-chan struct{}, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	s.mu.Lock()
	if s.snapshot.State == domain.StateLoading {
		s.mu.Unlock()

		return nil, ErrBusy
	}

	s.snapshot = domain.Snapshot{
		State:      domain.StateLoading,
		Transcript: transcript,
	}
	s.inFlight.Add(1)
	s.mu.Unlock()

	requestID := uuid.NewString()
	done := make(chan struct{})

	s.log.InfoContext(ctx, "Summary request is started",
		"requestID", requestID,
		"transcriptLength", len(transcript))

	go func() {
		defer s.inFlight.Done()
		defer close(done)

		s.run(context.WithoutCancel(ctx), requestID, transcript)
	}()

	return done, nil
}

// Wait blocks until no summarization is in flight.
func (s *Session) Wait() {
	s.inFlight.Wait()
}

func (s *Session) run(ctx context.Context, requestID string, transcript string) {
	start := time.Now()

	summary, err := s.summarizer.Summarize(ctx, transcript)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.State = domain.StateFailed
		s.snapshot.Summary = ""
		s.snapshot.ErrorMessage = FailureMessage

		s.log.ErrorContext(ctx, "Failed to generate summary",
			"error", err,
			"requestID", requestID,
			"configurationError", errors.Is(err, summarizer.ErrConfiguration),
			"durationMs", time.Since(start).Milliseconds())

		return
	}

	s.snapshot.State = domain.StateSucceeded
	s.snapshot.Summary = summary
	s.snapshot.ErrorMessage = ""

	s.log.InfoContext(ctx, "Summary is generated",
		"requestID", requestID,
		"summaryLength", len(summary),
		"durationMs", time.Since(start).Milliseconds())
}
