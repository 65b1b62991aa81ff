package ocr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemote_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "fra+eng", r.URL.Query().Get("lang"))
		assert.Equal(t, "150", r.URL.Query().Get("dpi"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "image-bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rec_texts":["Total"],"dt_polys":[[[10,10],[50,10],[50,30],[10,30]]],"rec_scores":[0.95]}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "secret", 0)
	defer r.Close()

	frags, err := r.Recognize(context.Background(), Input{
		Page:      3,
		Image:     []byte("image-bytes"),
		Languages: []string{"fra", "eng"},
		DPI:       150,
	})
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, "Total", frags[0].Text)
	assert.Equal(t, 0.95, frags[0].Confidence)
}

func TestRemote_RetryableStatus(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "busy", code)
		}))

		_, err := NewRemote(srv.URL, "", 0).Recognize(context.Background(), Input{Page: 1, Image: []byte("x")})
		srv.Close()

		var re *RetryableError
		require.True(t, errors.As(err, &re), "status %d", code)
		assert.Equal(t, code, re.StatusCode)
	}
}

func TestRemote_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, "", 0).Recognize(context.Background(), Input{Page: 1, Image: []byte("x")})
	require.Error(t, err)
	var re *RetryableError
	assert.False(t, errors.As(err, &re))
	assert.Contains(t, err.Error(), "400")
}

func TestRemote_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"not a page"`))
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, "", 0).Recognize(context.Background(), Input{Page: 7, Image: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 7")
}
