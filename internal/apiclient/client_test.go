package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yisikawa/LyricSyncAI/internal/api"
)

func TestStatusDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.StatusResponse{Running: true})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !resp.Running {
		t.Fatal("expected running status")
	}
}

func TestRunsBuildsStatusQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(api.RunListResponse{})
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Runs(context.Background(), []string{"ready", "failed"}); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if gotQuery != "status=ready,failed" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no audio source for ghost.mp3"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Transcribe(context.Background(), api.TranscribeRequest{FilePath: "ghost.mp3"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no audio source") {
		t.Fatalf("error body not surfaced: %v", err)
	}
}

func TestUploadSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "song.mp4" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		json.NewEncoder(w).Encode(api.UploadResponse{Filename: header.Filename, RunID: "r-1"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "song.mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := New(srv.URL).Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.RunID != "r-1" {
		t.Fatalf("unexpected run id %q", resp.RunID)
	}
}

func TestTranscribeLiveCollectsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		enc.Encode(api.Segment{ID: 1, Text: "one"})
		enc.Encode(api.Segment{ID: 2, Text: "two"})
	}))
	defer srv.Close()

	var texts []string
	err := New(srv.URL).TranscribeLive(context.Background(), api.TranscribeRequest{FilePath: "a.mp3"}, func(seg api.Segment) {
		texts = append(texts, seg.Text)
	})
	if err != nil {
		t.Fatalf("TranscribeLive: %v", err)
	}
	if len(texts) != 2 || texts[1] != "two" {
		t.Fatalf("unexpected segments %v", texts)
	}
}

func TestTranscribeLiveTerminalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(api.Segment{ID: 1, Text: "one"})
		enc.Encode(map[string]string{"error": "model crashed"})
	}))
	defer srv.Close()

	err := New(srv.URL).TranscribeLive(context.Background(), api.TranscribeRequest{FilePath: "a.mp3"}, nil)
	if err == nil || !strings.Contains(err.Error(), "model crashed") {
		t.Fatalf("expected terminal stream error, got %v", err)
	}
}
