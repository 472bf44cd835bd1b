package mangaplus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/tests/testutil"
)

func TestFetchTitle_Success(t *testing.T) {
	snap := model.Snapshot{
		Title:        model.Title{ID: 100056, Name: "SPY x FAMILY"},
		LastChapters: []model.Chapter{testutil.Chapter(1020002, "#101", "Mission: 101", 1718550000)},
		NextRelease:  time.Unix(1719759600, 0).UTC(),
	}
	body := testutil.EncodeSnapshot(snap)

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/title_detail", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "", time.Second)
	fetched, err := c.FetchTitle(context.Background(), 100056)
	require.NoError(t, err)

	assert.Equal(t, []string{"100056"}, gotQuery["title_id"])
	assert.NotContains(t, gotQuery, "secret")
	assert.Equal(t, body, fetched.Raw)
	assert.Equal(t, &snap, fetched.Snapshot)
}

func TestFetchTitle_SendsSecret(t *testing.T) {
	var secret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.URL.Query().Get("secret")
		_, _ = w.Write(testutil.EncodeSnapshot(model.Snapshot{
			LastChapters: []model.Chapter{testutil.Chapter(1, "#001", "One", 1)},
		}))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "s3cr3t", time.Second).FetchTitle(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", secret)
}

func TestFetchTitle_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(testutil.EncodeError(1, "Maintenance", "Back soon"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).FetchTitle(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsAPIError(err))
}

func TestFetchTitle_APIErrorWithStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(testutil.EncodeError(2, "Bad request", ""))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).FetchTitle(context.Background(), 1)
	assert.True(t, IsAPIError(err))
}

func TestFetchTitle_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).FetchTitle(context.Background(), 1)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestFetchTitle_TransportFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).FetchTitle(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
