package page

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// FactCheckPath is the backend route the page posts to.
const FactCheckPath = "/api/fact-check"

// MsgBackendFailure is used when a failed response has no detail.
const MsgBackendFailure = "Fact-check failed"

// BackendError is a failure reported by the backend with a non-2xx status.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

type factCheckReq struct {
	Article string `json:"article"`
}

type factCheckResp struct {
	Report string `json:"report"`
	Status string `json:"status,omitempty"`
}

type failureResp struct {
	Detail string `json:"detail"`
}

// HTTPBackend calls the fact-check endpoint over HTTP.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBackend builds a backend client for baseURL. A nil client gets
// one with the given timeout; zero means no timeout.
func NewHTTPBackend(baseURL string, client *http.Client, timeout time.Duration) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPBackend{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// FactCheck posts the article and returns the report text.
func (b *HTTPBackend) FactCheck(ctx context.Context, article string) (string, error) {
	body, err := json.Marshal(factCheckReq{Article: article})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+FactCheckPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fact-check %s: %w", FactCheckPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var data failureResp
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", fmt.Errorf("fact-check %s returned %d: decode: %w", FactCheckPath, resp.StatusCode, err)
		}
		msg := data.Detail
		if msg == "" {
			msg = MsgBackendFailure
		}
		return "", &BackendError{Status: resp.StatusCode, Message: msg}
	}

	var data factCheckResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("fact-check %s: decode: %w", FactCheckPath, err)
	}
	return data.Report, nil
}
