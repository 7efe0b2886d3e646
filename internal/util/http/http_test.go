package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(r.Header.Get("User-Agent") + "|" + r.Header.Get("X-Test")))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	data, err := Fetch(ctx, srv.URL+"/ok", FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "posterize/"), string(data))
	require.True(t, strings.HasSuffix(string(data), "|yes"), string(data))

	_, err = Fetch(ctx, srv.URL+"/missing", FetchOptions{})
	require.ErrorContains(t, err, "HTTP 404")

	_, err = Fetch(ctx, srv.URL+"/big", FetchOptions{MaxBytes: 16})
	require.ErrorContains(t, err, "exceeds 16 bytes")

	data, err = Fetch(ctx, srv.URL+"/big", FetchOptions{MaxBytes: 64})
	require.NoError(t, err)
	require.Len(t, data, 64)
}
