package clientcli_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/sagarc03/sfs"
	"github.com/sagarc03/sfs/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = sfs.Target{Org: "acme", Context: "backups", Name: "db"}

func newClient(t *testing.T, url string, opts ...clientcli.Option) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{
		URL:      url,
		User:     "alice",
		Password: "secret",
	}, opts...)
	require.NoError(t, err)
	return client
}

func assertAuth(t *testing.T, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "secret", pass)
}

func TestNew(t *testing.T) {
	t.Run("origin drops path and query", func(t *testing.T) {
		client := newClient(t, "https://host.example:8443/some/path?x=1")
		assert.Equal(t, "https://host.example:8443", client.Origin())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := clientcli.New(&clientcli.Config{})
		assert.ErrorIs(t, err, sfs.ErrInvalidEndpoint)
	})
}

func TestClient_RequestsUseOrigin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contexts", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contexts":[]}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL+"/ignored/prefix?token=1")
	_, err := client.ListContexts(context.Background())
	require.NoError(t, err)
}

func TestClient_Put(t *testing.T) {
	t.Run("uploads zipped directory", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(src, "site.yml"), []byte("hosts: all"), 0o600))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/files/acme/backups/", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
			assertAuth(t, r)

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "uploadFile", r.FormValue("name"))
			assert.Equal(t, "db.zip", r.FormValue("filename"))

			file, header, err := r.FormFile("uploadFile")
			require.NoError(t, err)
			defer func() { _ = file.Close() }()
			assert.Equal(t, "db.zip", header.Filename)

			data, err := io.ReadAll(file)
			require.NoError(t, err)
			zr, err := zip.NewReader(strings.NewReader(string(data)), int64(len(data)))
			require.NoError(t, err)
			require.Len(t, zr.File, 1)
			assert.Equal(t, "site.yml", zr.File[0].Name)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"file":"db.zip"}`))
		}))
		defer server.Close()

		tmpBase := t.TempDir()
		client := newClient(t, server.URL, clientcli.WithTempDir(tmpBase))

		resp, err := client.Put(context.Background(), target, src)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"file":"db.zip"}`, string(resp.Body))

		entries, err := os.ReadDir(tmpBase)
		require.NoError(t, err)
		assert.Empty(t, entries, "temporary archive directory must be removed")
	})

	t.Run("server error removes archive and keeps raw body", func(t *testing.T) {
		src := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o600))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("<h1>boom</h1>"))
		}))
		defer server.Close()

		tmpBase := t.TempDir()
		client := newClient(t, server.URL, clientcli.WithTempDir(tmpBase))

		_, err := client.Put(context.Background(), target, src)
		var apiErr *sfs.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "<h1>boom</h1>", apiErr.Body)

		entries, err := os.ReadDir(tmpBase)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("transport failure removes archive", func(t *testing.T) {
		src := t.TempDir()
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		tmpBase := t.TempDir()
		client := newClient(t, url, clientcli.WithTempDir(tmpBase))

		_, err := client.Put(context.Background(), target, src)
		assert.ErrorIs(t, err, sfs.ErrArchiveRead)

		entries, err := os.ReadDir(tmpBase)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("archive failure sends nothing", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client := newClient(t, server.URL, clientcli.WithTempDir(t.TempDir()))

		_, err := client.Put(context.Background(), target, filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, sfs.ErrArchiveCreate)
		assert.False(t, called)
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("writes file and creates directory", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/files/acme/backups/db", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assertAuth(t, r)
			_, _ = w.Write([]byte("archive bytes"))
		}))
		defer server.Close()

		dest := filepath.Join(t.TempDir(), "downloads")
		client := newClient(t, server.URL)

		resp, err := client.Get(context.Background(), target, dest)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		content, err := os.ReadFile(filepath.Join(dest, "db"))
		require.NoError(t, err)
		assert.Equal(t, "archive bytes", string(content))
	})

	t.Run("unwritable destination is a local file error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("archive bytes"))
		}))
		defer server.Close()

		blocker := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
		dest := filepath.Join(blocker, "downloads")

		client := newClient(t, server.URL)
		_, err := client.Get(context.Background(), target, dest)

		require.ErrorIs(t, err, sfs.ErrLocalFileCreate)
		assert.Contains(t, err.Error(), filepath.Join(dest, "db"))
		var apiErr *sfs.APIError
		assert.False(t, errors.As(err, &apiErr))
	})

	t.Run("not found does not touch disk", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found"}`))
		}))
		defer server.Close()

		dest := filepath.Join(t.TempDir(), "downloads")
		client := newClient(t, server.URL)

		_, err := client.Get(context.Background(), target, dest)
		assert.ErrorIs(t, err, sfs.ErrNotFound)
		assert.NoDirExists(t, dest)
	})
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/files/acme/backups/db", r.URL.Path)
		assertAuth(t, r)
		_, _ = w.Write([]byte(`{"deleted":"db"}`))
	}))
	defer server.Close()

	resp, err := newClient(t, server.URL).Delete(context.Background(), target)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":"db"}`, string(resp.Body))
}

func TestClient_ListFiles(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/files/acme/backups", r.URL.Path)
			_, _ = w.Write([]byte(`{"files":[{"name":"db.zip","date":1}]}`))
		}))
		defer server.Close()

		resp, err := newClient(t, server.URL).ListFiles(context.Background(), target)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, server.URL+"/files/acme/backups", resp.URL)
	})

	t.Run("failure carries url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
		}))
		defer server.Close()

		_, err := newClient(t, server.URL).ListFiles(context.Background(), target)
		require.ErrorIs(t, err, sfs.ErrUnauthorized)

		f := sfs.FailureFrom(err)
		assert.Equal(t, http.StatusUnauthorized, f.Code)
		assert.Equal(t, "Unauthorized", f.Response)
		assert.Equal(t, server.URL+"/files/acme/backups", f.URL)
	})

	t.Run("transport failure carries url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newClient(t, url).ListFiles(context.Background(), target)

		var reqErr *sfs.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, url+"/files/acme/backups", sfs.FailureFrom(err).URL)
	})
}

func TestClient_JSONHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), r.Method+" "+r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"), r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Get(ctx, target, t.TempDir())
	require.NoError(t, err)
	_, err = client.Delete(ctx, target)
	require.NoError(t, err)
	_, err = client.ListFiles(ctx, target)
	require.NoError(t, err)
	_, err = client.ListContexts(ctx)
	require.NoError(t, err)
}

func TestClient_NoCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := clientcli.New(&clientcli.Config{URL: server.URL})
	require.NoError(t, err)

	_, err = client.ListContexts(context.Background())
	assert.ErrorIs(t, err, sfs.ErrUnauthorized)
}

func TestClient_TLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"contexts":[]}`))
	}))
	defer server.Close()

	t.Run("disabled by default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{URL: server.URL})
		require.NoError(t, err)

		_, err = client.ListContexts(context.Background())
		assert.NoError(t, err)
	})

	t.Run("enabled rejects self-signed certificate", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{URL: server.URL, CertVerify: true})
		require.NoError(t, err)

		_, err = client.ListContexts(context.Background())
		require.Error(t, err)
		var apiErr *sfs.APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}
