package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yisikawa/LyricSyncAI/internal/api"
)

// Client talks to a running lyricsync daemon over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the daemon at baseURL (e.g. http://127.0.0.1:8001).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpc:   &http.Client{Timeout: 10 * time.Minute},
	}
}

// Status fetches daemon readiness and dependency availability.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.getJSON(ctx, "/api/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Runs lists pipeline runs, optionally filtered by status values.
func (c *Client) Runs(ctx context.Context, statuses []string) (*api.RunListResponse, error) {
	target := "/api/runs"
	if len(statuses) > 0 {
		target += "?status=" + strings.Join(statuses, ",")
	}
	var resp api.RunListResponse
	if err := c.getJSON(ctx, target, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunDetail fetches one run with its recorded artifacts.
func (c *Client) RunDetail(ctx context.Context, id string) (*api.RunDetailResponse, error) {
	var resp api.RunDetailResponse
	if err := c.getJSON(ctx, "/api/runs/"+id, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload sends a local video file to the daemon and returns the
// accepted run information.
func (c *Client) Upload(ctx context.Context, path string) (*api.UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp api.UploadResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transcribe requests the full segment list for a file.
func (c *Client) Transcribe(ctx context.Context, reqBody api.TranscribeRequest) (*api.TranscribeResponse, error) {
	var resp api.TranscribeResponse
	if err := c.postJSON(ctx, "/transcribe", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TranscribeLive streams segments as they are recognized, invoking
// onSegment for each one. A terminal stream error is returned.
func (c *Client) TranscribeLive(ctx context.Context, reqBody api.TranscribeRequest, onSegment func(api.Segment)) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe-live", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeErrorBody(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var element api.StreamElement
		if err := json.Unmarshal([]byte(line), &element); err != nil {
			return fmt.Errorf("decode stream element: %w", err)
		}
		if element.Error != "" {
			return fmt.Errorf("transcription failed: %s", element.Error)
		}
		if onSegment != nil {
			onSegment(element.Segment)
		}
	}
	return scanner.Err()
}

// Separate requests vocal/instrumental stems for an upload.
func (c *Client) Separate(ctx context.Context, reqBody api.SeparateRequest) (*api.SeparateResponse, error) {
	var resp api.SeparateResponse
	if err := c.postJSON(ctx, "/separate", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export requests a subtitle burn for an upload.
func (c *Client) Export(ctx context.Context, reqBody api.ExportRequest) (*api.ExportResponse, error) {
	var resp api.ExportResponse
	if err := c.postJSON(ctx, "/export", reqBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+target, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) postJSON(ctx context.Context, target string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeErrorBody(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeErrorBody(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}
