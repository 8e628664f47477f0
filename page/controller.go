package page

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf16"
)

// Messages shown in the error field.
const (
	MsgEmptyArticle    = "Please enter an article to fact-check"
	MsgArticleTooShort = "Article is too short. Please provide a substantial article."
	MsgGenericFailure  = "An error occurred during fact-checking"
)

// MinArticleLength is measured on the raw, untrimmed text, in UTF-16
// code units as a browser counts them.
const MinArticleLength = 50

func articleLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Phase is the controller's request state.
type Phase int

const (
	Idle Phase = iota
	Loading
)

func (p Phase) String() string {
	if p == Loading {
		return "loading"
	}
	return "idle"
}

// State is a snapshot of what the page renders.
type State struct {
	Article   string
	Report    string
	IsLoading bool
	Error     string
}

// Backend performs the single fact-check round trip.
type Backend interface {
	FactCheck(ctx context.Context, article string) (string, error)
}

// Controller owns the page state and drives one request at a time.
type Controller struct {
	backend Backend

	mu      sync.Mutex
	article string
	report  string
	errMsg  string
	phase   Phase
}

// NewController returns a controller with empty state.
func NewController(backend Backend) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("fact-check backend required")
	}
	return &Controller{backend: backend}, nil
}

// UpdateArticle replaces the draft article.
func (c *Controller) UpdateArticle(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.article = text
}

// Submit validates the article and, if it passes, sends it to the backend
// and records the outcome. It reports whether a request was sent. A call
// made while another request is in flight does nothing.
func (c *Controller) Submit(ctx context.Context) bool {
	article, ok := c.begin()
	if !ok {
		return false
	}
	c.finish(c.backend.FactCheck(ctx, article))
	return true
}

// SubmitAsync is Submit with the request running in its own goroutine.
// Validation happens before it returns; the channel is closed once the
// outcome is recorded. It returns false when no request was started.
func (c *Controller) SubmitAsync(ctx context.Context) (<-chan struct{}, bool) {
	article, ok := c.begin()
	if !ok {
		return nil, false
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.finish(c.backend.FactCheck(ctx, article))
	}()
	return done, true
}

// begin runs validation and moves Idle to Loading.
func (c *Controller) begin() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == Loading {
		return "", false
	}
	if strings.TrimSpace(c.article) == "" {
		c.errMsg = MsgEmptyArticle
		return "", false
	}
	if articleLength(c.article) < MinArticleLength {
		c.errMsg = MsgArticleTooShort
		return "", false
	}
	c.phase = Loading
	c.errMsg = ""
	c.report = ""
	return c.article, true
}

func (c *Controller) finish(report string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = errorMessage(err)
	} else {
		c.report = report
	}
	c.phase = Idle
}

// Clear empties the article, report and error. The loading flag is kept.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.article = ""
	c.report = ""
	c.errMsg = ""
}

// Phase returns the current request state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Article:   c.article,
		Report:    c.report,
		IsLoading: c.phase == Loading,
		Error:     c.errMsg,
	}
}

// Only backend-reported failures carry a message fit for the user;
// transport and decoding failures collapse to the generic text.
func errorMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return MsgGenericFailure
}
