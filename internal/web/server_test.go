package web_test

import (
	"callnotes/internal/domain"
	"callnotes/internal/session"
	"callnotes/internal/summarizer"
	"callnotes/internal/web"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sevenSections = `## Call Metadata
- Not mentioned

## Key Facts
- Overdue balance discussed

## Customer Situation
- Not mentioned

## Agent Actions
- Informed customer about overdue balance

## Customer Commitments
- Pay $50 next Friday

## Risks & Flags
- Not mentioned

## Next Steps
- Follow up after Friday`

type fakeSummarizer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	result  string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	fake    *fakeSummarizer
	session *session.Session
	handler http.Handler
}

func newHarness(t *testing.T, fake *fakeSummarizer) *harness {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(fake, log)

	srv, err := web.New(web.Options{Addr: ":0"}, sess, log)
	require.NoError(t, err)

	return &harness{fake: fake, session: sess, handler: srv.Handler()}
}

func (h *harness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) page(t *testing.T) *goquery.Document {
	t.Helper()

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func (h *harness) submitForm(t *testing.T, transcript string) {
	t.Helper()

	form := url.Values{"transcript": {transcript}}
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(t, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func (h *harness) postJSON(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return h.do(t, req)
}

func assertSinglePane(t *testing.T, doc *goquery.Document, id string) {
	t.Helper()

	panes := doc.Find("#output [id^=pane-]")
	require.Equal(t, 1, panes.Length(), "exactly one output pane expected")
	id, _ = strings.CutPrefix(id, "#")
	got, _ := panes.Attr("id")
	assert.Equal(t, id, got)
}

func TestPageInitialState(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{})

	doc := h.page(t)

	assert.Equal(t, "Debt Collection Call Summarizer", doc.Find("h1").Text())
	assertSinglePane(t, doc, "pane-empty")
	assert.Contains(t, doc.Find("#pane-empty").Text(), "Summary will appear here")

	_, disabled := doc.Find("#generate").Attr("disabled")
	assert.False(t, disabled, "button must stay usable without scripts")
	assert.Contains(t, doc.Find("script").Text(), `input.value.trim() === ""`)
	assert.Equal(t, "Generate Summary", strings.TrimSpace(doc.Find("#generate").Text()))
	assert.Zero(t, doc.Find("#ready").Length())
}

func TestFormSubmitBlankTranscriptIsNoop(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{result: "x"})

	h.submitForm(t, "   \n ")
	h.session.Wait()

	assert.Zero(t, h.fake.calls.Load())
	assert.Equal(t, domain.StateIdle, h.session.Snapshot().State)
	assertSinglePane(t, h.page(t), "pane-empty")
}

func TestFormSubmitFailureShowsOnlyFixedMessage(t *testing.T) {
	const transcript = "Customer called about late payment."
	h := newHarness(t, &fakeSummarizer{err: &summarizer.UpstreamError{Err: errors.New("503 model overloaded")}})

	h.submitForm(t, transcript)
	h.session.Wait()

	doc := h.page(t)
	assertSinglePane(t, doc, "pane-error")
	assert.Contains(t, doc.Find("#pane-error").Text(), "Generation Failed")
	assert.Equal(t, session.FailureMessage, strings.TrimSpace(doc.Find("#pane-error p").Text()))

	html, err := doc.Html()
	require.NoError(t, err)
	assert.NotContains(t, html, "model overloaded")

	assert.Equal(t, transcript, doc.Find("#transcript").Text())
	assert.Empty(t, h.session.Snapshot().Summary)
}

func TestFormSubmitSuccessRendersSummary(t *testing.T) {
	const transcript = "Agent: Hello, this is regarding your overdue balance. Customer: I can pay $50 next Friday."
	h := newHarness(t, &fakeSummarizer{result: sevenSections})

	h.submitForm(t, transcript)
	h.session.Wait()

	doc := h.page(t)
	assertSinglePane(t, doc, "pane-summary")
	assert.Equal(t, 1, doc.Find("#ready").Length())
	assert.Zero(t, doc.Find("#pane-error").Length())

	headers := doc.Find("#pane-summary h2").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	assert.Equal(t, summarizer.Sections, headers)

	_, disabled := doc.Find("#generate").Attr("disabled")
	assert.False(t, disabled)
}

func waitStarted(t *testing.T, fake *fakeSummarizer) {
	t.Helper()

	select {
	case <-fake.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("summarizer was not called")
	}
}

func TestPageWhileLoading(t *testing.T) {
	fake := &fakeSummarizer{
		result:  sevenSections,
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	h := newHarness(t, fake)

	h.submitForm(t, "first")
	waitStarted(t, fake)

	doc := h.page(t)
	assertSinglePane(t, doc, "pane-loading")
	assert.Contains(t, doc.Find("#pane-loading").Text(), "Analyzing transcript...")
	assert.Equal(t, "Processing...", strings.TrimSpace(doc.Find("#generate").Text()))
	_, disabled := doc.Find("#generate").Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, 1, doc.Find(`meta[http-equiv="refresh"]`).Length())

	h.submitForm(t, "second")
	assert.EqualValues(t, 1, fake.calls.Load())
	assert.Equal(t, "first", h.session.Snapshot().Transcript)

	close(fake.release)
	h.session.Wait()
	assert.EqualValues(t, 1, fake.calls.Load())

	doc = h.page(t)
	assertSinglePane(t, doc, "pane-summary")
	assert.Zero(t, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestAPISummarize(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{result: sevenSections})

	rec := h.postJSON(t, `{"transcript":"Agent: Hello. Customer: I can pay $50 next Friday."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp web.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateSucceeded, resp.State)
	assert.Equal(t, sevenSections, resp.Summary)
	assert.Empty(t, resp.Error)
}

func TestAPISummarizeFailure(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{err: summarizer.ErrConfiguration})

	rec := h.postJSON(t, `{"transcript":"Customer called about late payment."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp web.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateFailed, resp.State)
	assert.Equal(t, session.FailureMessage, resp.Error)
	assert.Empty(t, resp.Summary)
	assert.NotContains(t, rec.Body.String(), summarizer.ErrConfiguration.Error())
}

func TestAPISummarizeRejectsBadInput(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{result: "x"})

	tests := []struct {
		name string
		body string
		code web.ErrorCode
	}{
		{"blank transcript", `{"transcript":"  "}`, web.ErrCodeValidation},
		{"missing transcript", `{}`, web.ErrCodeValidation},
		{"malformed json", `{"transcript":`, web.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.postJSON(t, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp web.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	assert.Zero(t, h.fake.calls.Load())
	assert.Equal(t, domain.StateIdle, h.session.Snapshot().State)
}

func TestAPISummarizeConflictWhileLoading(t *testing.T) {
	fake := &fakeSummarizer{result: "notes", release: make(chan struct{})}
	h := newHarness(t, fake)

	_, err := h.session.Submit(context.Background(), "first")
	require.NoError(t, err)

	rec := h.postJSON(t, `{"transcript":"second"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp web.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, web.ErrCodeConflict, resp.Error.Code)

	close(fake.release)
	h.session.Wait()
	assert.EqualValues(t, 1, fake.calls.Load())
}

func TestAPIStateAndHealth(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{})
	h.session.SetTranscript("draft")

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp web.StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StateIdle, resp.State)
	assert.Equal(t, "draft", resp.Transcript)

	rec = h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	h := newHarness(t, &fakeSummarizer{})

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
