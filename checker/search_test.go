package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBraveSearch_RequiresKey(t *testing.T) {
	_, err := NewBraveSearch(SearchSettings{}, nil)
	assert.Error(t, err)
}

func TestBraveSearch_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "bridge opened 1932", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"City archive","url":"https://archive.example/bridge","description":"Opened in 1932."},
			{"title":"No link","url":""}
		]}}`))
	}))
	defer srv.Close()

	b, err := NewBraveSearch(SearchSettings{APIKey: "secret", BaseURL: srv.URL, Count: 3}, srv.Client())
	require.NoError(t, err)

	got, err := b.Search(context.Background(), "  bridge opened 1932 ")
	require.NoError(t, err)
	assert.Equal(t, []SearchResult{{
		Title:       "City archive",
		URL:         "https://archive.example/bridge",
		Description: "Opened in 1932.",
	}}, got)
}

func TestBraveSearch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b, err := NewBraveSearch(SearchSettings{APIKey: "k", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = b.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = b.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestNewBraveSearch_CountBounds(t *testing.T) {
	b, err := NewBraveSearch(SearchSettings{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultSearchCount, b.count)
	assert.Equal(t, braveSearchURL, b.baseURL)

	b, err = NewBraveSearch(SearchSettings{APIKey: "k", Count: 100}, nil)
	require.NoError(t, err)
	assert.Equal(t, maxSearchCount, b.count)
}
