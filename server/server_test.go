package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fact_check_news/cache"
	"fact_check_news/checker"
	"fact_check_news/page"
)

const article = "The city council approved a 12 million dollar budget on Tuesday after a long debate."

// llmFunc adapts a function to checker.LLMClient.
type llmFunc func(ctx context.Context, p checker.Prompt) (string, error)

func (f llmFunc) Complete(ctx context.Context, p checker.Prompt) (string, error) {
	return f(ctx, p)
}

type testEnv struct {
	ts      *httptest.Server
	srv     *Server
	client  *http.Client
	llmHits *atomic.Int32
}

func cannedLLM(hits *atomic.Int32) llmFunc {
	return func(_ context.Context, p checker.Prompt) (string, error) {
		hits.Add(1)
		switch p.Kind {
		case checker.KindExtract:
			return `[{"claim":"Budget was 12 million"}]`, nil
		case checker.KindVerify:
			return "Verdict: TRUE", nil
		default:
			return "# Report\n\n  Budget claim: TRUE", nil
		}
	}
}

func newEnv(t *testing.T, llm checker.LLMClient, c cache.Cache) *testEnv {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	chk, err := checker.New(llm, nil, checker.Options{Logger: logger})
	require.NoError(t, err)

	var handler http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	srv, err := New(Options{
		Checker:        chk,
		Backend:        page.NewHTTPBackend(ts.URL, ts.Client(), 0),
		Cache:          c,
		RequestTimeout: 10 * time.Second,
		Logger:         logger,
	})
	require.NoError(t, err)
	handler = srv.Routes()
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{ts: ts, srv: srv, client: &http.Client{Jar: jar}}
}

func newCannedEnv(t *testing.T, c cache.Cache) *testEnv {
	hits := &atomic.Int32{}
	env := newEnv(t, cannedLLM(hits), c)
	env.llmHits = hits
	return env
}

func (e *testEnv) postJSON(t *testing.T, body string) (int, map[string]string) {
	t.Helper()
	resp, err := e.client.Post(e.ts.URL+"/api/fact-check", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func jsonBody(t *testing.T, article string) string {
	t.Helper()
	data, err := json.Marshal(map[string]string{"article": article})
	require.NoError(t, err)
	return string(data)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	chk, err := checker.New(checker.MockLLM{}, nil, checker.Options{})
	require.NoError(t, err)
	_, err = New(Options{Checker: chk})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newCannedEnv(t, nil)
	code, body := env.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"healthy"}`, body)
}

func TestFactCheckAPI_Success(t *testing.T) {
	env := newCannedEnv(t, nil)
	code, out := env.postJSON(t, jsonBody(t, article))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "# Report\n\n  Budget claim: TRUE", out["report"])
	assert.Equal(t, "completed", out["status"])
}

func TestFactCheckAPI_Errors(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		env := newCannedEnv(t, nil)
		code, out := env.postJSON(t, jsonBody(t, "short"))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, checker.ErrArticleTooShort.Error(), out["detail"])
		assert.Zero(t, env.llmHits.Load())
	})

	t.Run("bad body", func(t *testing.T) {
		env := newCannedEnv(t, nil)
		code, out := env.postJSON(t, `{"article":`)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "invalid request body", out["detail"])
	})

	t.Run("no claims", func(t *testing.T) {
		env := newEnv(t, llmFunc(func(context.Context, checker.Prompt) (string, error) {
			return "[]", nil
		}), nil)
		code, out := env.postJSON(t, jsonBody(t, article))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, checker.ErrNoClaims.Error(), out["detail"])
	})

	t.Run("model failure", func(t *testing.T) {
		env := newEnv(t, llmFunc(func(context.Context, checker.Prompt) (string, error) {
			return "", errors.New("upstream down")
		}), nil)
		code, out := env.postJSON(t, jsonBody(t, article))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Fact-check failed: extract claims: upstream down", out["detail"])
	})
}

func TestFactCheckAPI_Cache(t *testing.T) {
	mem := cache.NewMemory(time.Minute)
	env := newCannedEnv(t, mem)

	code, first := env.postJSON(t, jsonBody(t, article))
	require.Equal(t, http.StatusOK, code)
	hits := env.llmHits.Load()
	require.Equal(t, int32(3), hits)

	code, second := env.postJSON(t, jsonBody(t, article))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first, second)
	assert.Equal(t, hits, env.llmHits.Load())

	cached, ok, err := mem.Get(context.Background(), cache.Key(article))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first["report"], cached)
}

func TestFactCheckAPI_FailedReportNotCached(t *testing.T) {
	mem := cache.NewMemory(time.Minute)
	env := newEnv(t, llmFunc(func(_ context.Context, p checker.Prompt) (string, error) {
		switch p.Kind {
		case checker.KindExtract:
			return `[{"claim":"Budget was 12 million"}]`, nil
		case checker.KindVerify:
			return "ok", nil
		}
		return "", errors.New("overloaded")
	}), mem)

	code, out := env.postJSON(t, jsonBody(t, article))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Error generating report: overloaded", out["report"])

	_, ok, _ := mem.Get(context.Background(), cache.Key(article))
	assert.False(t, ok)
}

func TestPage_EmptyState(t *testing.T) {
	env := newCannedEnv(t, nil)
	code, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Your fact-check report will appear here")
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, "Processing...")
	assert.Equal(t, 1, env.srv.sessions.len())

	// The cookie keeps the same session.
	env.get(t, "/")
	assert.Equal(t, 1, env.srv.sessions.len())
}

func TestPage_ValidationErrors(t *testing.T) {
	env := newCannedEnv(t, nil)

	code, body := env.postForm(t, "/check", url.Values{"article": {"   "}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, page.MsgEmptyArticle)

	_, body = env.postForm(t, "/check", url.Values{"article": {"too short to check"}})
	assert.Contains(t, body, page.MsgArticleTooShort)
	assert.Contains(t, body, ">too short to check</textarea>")
	assert.Zero(t, env.llmHits.Load())
}

func waitIdle(t *testing.T, env *testEnv) string {
	t.Helper()
	var body string
	require.Eventually(t, func() bool {
		_, body = env.get(t, "/")
		return !strings.Contains(body, "Processing...")
	}, 5*time.Second, 20*time.Millisecond)
	return body
}

func TestPage_SubmitAndClear(t *testing.T) {
	env := newCannedEnv(t, nil)

	code, _ := env.postForm(t, "/check", url.Values{"article": {article}})
	assert.Equal(t, http.StatusOK, code)

	body := waitIdle(t, env)
	assert.Contains(t, body, `<div class="report"># Report

  Budget claim: TRUE</div>`)
	assert.NotContains(t, body, `role="alert"`)

	code, doc := env.get(t, "/report.html")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, doc, "<h1>Report</h1>")

	_, body = env.postForm(t, "/clear", nil)
	assert.Contains(t, body, "Your fact-check report will appear here")
	assert.Contains(t, body, "></textarea>")

	code, _ = env.get(t, "/report.html")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPage_BackendErrorShown(t *testing.T) {
	env := newEnv(t, llmFunc(func(context.Context, checker.Prompt) (string, error) {
		return "[]", nil
	}), nil)

	env.postForm(t, "/check", url.Values{"article": {article}})
	body := waitIdle(t, env)
	assert.Contains(t, body, checker.ErrNoClaims.Error())
	assert.Contains(t, body, "Your fact-check report will appear here")
}

func TestPage_LoadingState(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	env := newEnv(t, llmFunc(func(ctx context.Context, p checker.Prompt) (string, error) {
		if p.Kind == checker.KindExtract {
			entered <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
			return `[{"claim":"Budget was 12 million"}]`, nil
		}
		return "done", nil
	}), nil)

	env.postForm(t, "/check", url.Values{"article": {article}})
	<-entered

	_, body := env.get(t, "/")
	assert.Contains(t, body, "Processing...")
	assert.Contains(t, body, `<meta http-equiv="refresh" content="2">`)
	assert.Contains(t, body, "Fact-Checking...")
	assert.Contains(t, body, "Deploying parallel fact-checking agents")

	// Clear and resubmit are ignored while loading.
	_, body = env.postForm(t, "/clear", nil)
	assert.Contains(t, body, article)
	env.postForm(t, "/check", url.Values{"article": {article + " changed"}})
	assert.Len(t, entered, 0)

	close(release)
	body = waitIdle(t, env)
	assert.Contains(t, body, `<div class="report">done</div>`)
	assert.NotContains(t, body, "changed")
}
