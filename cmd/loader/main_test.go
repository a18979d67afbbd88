package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadDataset(t *testing.T) {
	t.Parallel()

	const payload = `{"videos": []}`

	t.Run("from file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "videos.json")
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		data, source, err := readDataset(context.Background(), path, "")
		require.NoError(t, err)
		require.Equal(t, payload, string(data))
		require.Equal(t, path, source)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := readDataset(context.Background(), filepath.Join(t.TempDir(), "absent.json"), "")
		require.ErrorContains(t, err, "read dataset")
	})

	t.Run("from url", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(payload))
		}))
		defer srv.Close()

		data, source, err := readDataset(context.Background(), "", srv.URL)
		require.NoError(t, err)
		require.Equal(t, payload, string(data))
		require.Equal(t, srv.URL, source)
	})

	t.Run("non-200 response", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		_, _, err := readDataset(context.Background(), "", srv.URL)
		require.ErrorContains(t, err, "unexpected status")
	})
}
