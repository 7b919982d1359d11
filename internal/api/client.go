package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/terabox/terabox-int/internal/config"
	"github.com/terabox/terabox-int/internal/http"
	"github.com/terabox/terabox-int/internal/logging"
	"github.com/terabox/terabox-int/internal/models"
)

// retryLogger adapts our structured logger to the retryablehttp
// LeveledLogger interface. Only failures are worth surfacing; retry
// bookkeeping stays at debug.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Msgf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Msgf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Msgf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Msgf("%s %v", msg, keysAndValues)
}

// Client is the TeraBox API client. All remote file I/O goes through it;
// results come back as typed values and side effects are reported only via
// return values or the supplied progress callback.
type Client struct {
	httpClient   *nethttp.Client // retrying client for idempotent JSON calls
	uploadClient *nethttp.Client // plain client: streamed multipart bodies cannot be replayed
	baseURL      string
	token        string
	logger       *logging.Logger
}

// NewClient creates an API client from the given configuration. The access
// token may be empty for pre-login calls (Login, Register).
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger("api")

	baseClient, err := http.ConfigureHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = baseClient
	retryClient.RetryMax = 4
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.Logger = &retryLogger{logger: logger}

	uploadClient, err := http.ConfigureHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to configure upload client: %w", err)
	}

	return &Client{
		httpClient:   retryClient.StandardClient(),
		uploadClient: uploadClient,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		token:        cfg.AccessToken,
		logger:       logger,
	}, nil
}

// doRequest performs a JSON request with authentication. Transport failures
// come back as NetworkError; the response is returned as-is for the caller
// to decode or map through decodeError.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, NewNetworkError(err)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *nethttp.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}

// decodeError maps a non-2xx response to a typed error. The backend sends
// FastAPI-style {"detail": "..."} bodies; the detail is surfaced verbatim
// when present, otherwise a generic message with the status.
func decodeError(resp *nethttp.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = payload.Detail
	}

	if resp.StatusCode == nethttp.StatusNotFound {
		if detail == "" {
			detail = "not found"
		}
		return NewNotFoundError(detail)
	}
	return NewServerError(resp.StatusCode, detail)
}

// Login authenticates against the backend and returns the bearer token with
// the identity it belongs to. The client itself stays tokenless; the caller
// persists the session through the config store.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, NewValidationError("email and password are required")
	}

	resp, err := c.doRequest(ctx, nethttp.MethodPost, "/api/auth/login", models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp)
	}

	var login models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &login, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.RegisterResponse, error) {
	if name == "" || email == "" || password == "" {
		return nil, NewValidationError("name, email and password are required")
	}

	resp, err := c.doRequest(ctx, nethttp.MethodPost, "/api/auth/register", models.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		return nil, decodeError(resp)
	}

	var reg models.RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return nil, fmt.Errorf("failed to decode register response: %w", err)
	}
	return &reg, nil
}

// Me returns the server-authoritative identity for the current token,
// including the latest quota counters.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// ListFiles returns the user's full file listing. The backend has no
// pagination; the slice is always fully materialized.
func (c *Client) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/api/files", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp)
	}

	var files []models.FileRecord
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode file list: %w", err)
	}
	return files, nil
}

// GetDashboardStats returns the account stats including the storage quota
// counters. The client never computes usage by summing file sizes; this is
// the only source for the quota pair.
func (c *Client) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/api/dashboard/stats", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return nil, decodeError(resp)
	}

	var stats models.DashboardStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard stats: %w", err)
	}
	return &stats, nil
}

// DeleteFile removes a file by id. An unknown id surfaces as NotFoundError;
// the dashboard treats that as already satisfied.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	if id == "" {
		return NewValidationError("file id is required")
	}

	resp, err := c.doRequest(ctx, nethttp.MethodDelete, "/api/files/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusNoContent {
		return decodeError(resp)
	}
	return nil
}

// uploadResponse is the backend's upload acknowledgement. The authoritative
// FileRecord arrives with the next listing refresh.
type uploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

// UploadFile uploads the file at path as a multipart form (field "file").
//
// onProgress, when non-nil, is invoked with a non-decreasing percentage in
// [0, 100] as request bytes are consumed, and once more with 100 after the
// server confirms. An aborted transfer propagates NetworkError; it never
// resolves silently. Uploads are not auto-retried: the streamed body cannot
// be replayed, and re-triggering is the caller's decision.
func (c *Client) UploadFile(ctx context.Context, path string, onProgress func(float64)) (*models.FileRecord, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewValidationError("no file selected")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if info.IsDir() {
		return nil, NewValidationError(fmt.Sprintf("%s is a directory", path))
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	counted := &progressReader{
		r:        src,
		total:    info.Size(),
		onUpdate: onProgress,
	}

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, counted); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+"/api/files/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Msg("upload transport failure")
		return nil, NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		return nil, decodeError(resp)
	}

	var ack uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	if onProgress != nil {
		onProgress(100)
	}

	c.logger.Info().Str("file_id", ack.FileID).Str("name", ack.Filename).Msg("file uploaded")

	return &models.FileRecord{
		ID:           ack.FileID,
		Filename:     ack.Filename,
		OriginalName: ack.Filename,
		Size:         info.Size(),
		UploadedAt:   time.Now().UTC(),
	}, nil
}

// DownloadFile fetches a file by id and saves it to destPath. The payload is
// buffered to a temporary file in the destination directory and renamed into
// place only after the full body arrived, so a transport error mid-stream
// never leaves a truncated artifact behind.
//
// onProgress, when non-nil, receives a non-decreasing percentage; when the
// server does not announce a length only the final 100 is reported.
func (c *Client) DownloadFile(ctx context.Context, id, destPath string, onProgress func(float64)) error {
	if id == "" {
		return NewValidationError("file id is required")
	}
	if strings.TrimSpace(destPath) == "" {
		return NewValidationError("destination path is required")
	}

	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/api/files/"+id+"/download", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return decodeError(resp)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".terabox-download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	counted := &progressReader{
		r:        resp.Body,
		total:    resp.ContentLength,
		onUpdate: onProgress,
	}

	if _, err := io.Copy(tmp, counted); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return NewNetworkError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	if onProgress != nil {
		onProgress(100)
	}

	c.logger.Info().Str("file_id", id).Str("path", destPath).Msg("file downloaded")
	return nil
}

// progressReader reports consumption of r as a percentage of total.
// Percentages are non-decreasing and clamped to [0, 100]; with an unknown
// total (<= 0) no intermediate updates are emitted.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     float64
	onUpdate func(float64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		if p.onUpdate != nil && p.total > 0 {
			pct := float64(p.read) / float64(p.total) * 100
			if pct > 100 {
				pct = 100
			}
			if pct > p.last {
				p.last = pct
				p.onUpdate(pct)
			}
		}
	}
	return n, err
}
