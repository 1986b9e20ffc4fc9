package clientcli

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sagarc03/sfs"
	"github.com/sagarc03/sfs/archive"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 5 * time.Minute

// Client performs operations against a Secure File Service.
type Client struct {
	origin      string
	credentials sfs.Credentials
	httpClient  *http.Client
	tempDir     string
}

var _ sfs.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. TLS verification is then up to
// the supplied client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTempDir sets the parent directory of put's temporary archive
// directory. The default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(c *Client) {
		c.tempDir = dir
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	origin, err := sfs.ResolveOrigin(cfg.URL)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !cfg.CertVerify, //#nosec G402 -- verification is opt-in, matching the service tooling
		MinVersion:         tls.VersionTLS12,
	}

	c := &Client{
		origin: origin,
		credentials: sfs.Credentials{
			User:     cfg.User,
			Password: cfg.Password,
		},
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Origin returns the scheme and host every request is sent to.
func (c *Client) Origin() string {
	return c.origin
}

// Put zips localPath and uploads it as "<name>.zip" into the target context.
// The temporary archive directory is removed before Put returns.
func (c *Client) Put(ctx context.Context, target sfs.Target, localPath string) (*sfs.Response, error) {
	tmpDir, err := os.MkdirTemp(c.tempDir, "sfs-put-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sfs.ErrArchiveCreate, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			slog.Warn("failed to remove temporary archive directory", "path", tmpDir, "err", rmErr)
		}
	}()

	fileName := target.Name + sfs.ArchiveExt
	zipPath := filepath.Join(tmpDir, fileName)

	if err := archive.Zip(localPath, zipPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", sfs.ErrArchiveCreate, zipPath, err)
	}

	body, contentType, err := multipartBody(zipPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", sfs.ErrArchiveRead, zipPath, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, sfs.FilesPath(target.Org, target.Context)+"/", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", sfs.ErrArchiveRead, zipPath, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get downloads the named file into localPath/<name>. localPath is created
// (one level only) when missing.
func (c *Client) Get(ctx context.Context, target sfs.Target, localPath string) (*sfs.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, sfs.FilePath(target), http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	fullPath := filepath.Join(localPath, target.Name)
	if err := writeLocalFile(localPath, fullPath, resp.Body); err != nil {
		return nil, err
	}

	return &sfs.Response{StatusCode: resp.StatusCode, URL: resp.URL}, nil
}

// Delete removes the named file from the target context.
func (c *Client) Delete(ctx context.Context, target sfs.Target) (*sfs.Response, error) {
	return c.simple(ctx, http.MethodDelete, sfs.FilePath(target))
}

// ListFiles lists the files of the target context.
func (c *Client) ListFiles(ctx context.Context, target sfs.Target) (*sfs.Response, error) {
	return c.simple(ctx, http.MethodGet, sfs.FilesPath(target.Org, target.Context))
}

// ListContexts lists every context.
func (c *Client) ListContexts(ctx context.Context) (*sfs.Response, error) {
	return c.simple(ctx, http.MethodGet, sfs.ContextsPath)
}

func (c *Client) simple(ctx context.Context, method, path string) (*sfs.Response, error) {
	req, err := c.newRequest(ctx, method, path, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.origin+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.credentials.User != "" || c.credentials.Password != "" {
		req.SetBasicAuth(c.credentials.User, c.credentials.Password)
	}
	return req, nil
}

// send executes req and reads the whole body. Only transport and read
// failures are returned as errors, as *sfs.RequestError.
func (c *Client) send(req *http.Request) (*sfs.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &sfs.RequestError{URL: req.URL.String(), Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sfs.RequestError{URL: req.URL.String(), Err: fmt.Errorf("read response: %w", err)}
	}

	return &sfs.Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        req.URL.String(),
	}, nil
}

// checkStatus maps non-2xx responses to *sfs.APIError with the raw body.
func checkStatus(resp *sfs.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &sfs.APIError{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
		URL:        resp.URL,
	}
}

func multipartBody(zipPath, fileName string) (*bytes.Buffer, string, error) {
	f, err := os.Open(zipPath) //#nosec G304 -- zipPath is created by Put
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	if err := mw.WriteField("name", sfs.UploadField); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("filename", fileName); err != nil {
		return nil, "", err
	}

	part, err := mw.CreateFormFile(sfs.UploadField, fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, mw.FormDataContentType(), nil
}

func writeLocalFile(dir, fullPath string, content []byte) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if mkErr := os.Mkdir(dir, 0o750); mkErr != nil {
			return fmt.Errorf("%w: %s: %w", sfs.ErrLocalFileCreate, fullPath, mkErr)
		}
	}

	if err := os.WriteFile(fullPath, content, 0o644); err != nil { //#nosec G306 -- downloaded archives are not secret
		return fmt.Errorf("%w: %s: %w", sfs.ErrLocalFileCreate, fullPath, err)
	}
	return nil
}
