package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yisikawa/LyricSyncAI/internal/api"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCommand()
	wanted := []string{"serve", "status", "runs", "upload", "transcribe", "separate", "export", "check", "config"}
	for _, name := range wanted {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestStatusCommandRendersDaemonState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.StatusResponse{
			Running: true,
			Dependencies: []api.DependencyStatus{
				{Name: "FFmpeg", Command: "ffmpeg", Available: true},
			},
			StageHealth: []api.StageHealth{{Name: "separate", Ready: true}},
		})
	}))
	defer srv.Close()

	out, err := runCLI(t, "--address", srv.URL, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Daemon: running") {
		t.Fatalf("missing daemon state in output:\n%s", out)
	}
	if !strings.Contains(out, "ffmpeg") || !strings.Contains(out, "separate") {
		t.Fatalf("missing table content:\n%s", out)
	}
}

func TestRunsCommandJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.RunListResponse{Runs: []api.Run{
			{ID: "r-1", Asset: "song.mp4", Status: "ready"},
		}})
	}))
	defer srv.Close()

	out, err := runCLI(t, "--address", srv.URL, "runs", "--json")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var resp api.RunListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].ID != "r-1" {
		t.Fatalf("unexpected runs %+v", resp.Runs)
	}
}

func TestExportCommandRequiresSRT(t *testing.T) {
	if _, err := runCLI(t, "--address", "http://127.0.0.1:0", "export", "song.mp4"); err == nil {
		t.Fatal("expected error without --srt")
	}
}

func TestExportCommandSendsParsedCues(t *testing.T) {
	var got api.ExportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(api.ExportResponse{URL: "/uploads/exported_song.mp4"})
	}))
	defer srv.Close()

	srtPath := filepath.Join(t.TempDir(), "song.srt")
	srt := "1\n00:00:00,000 --> 00:00:02,500\nhello\n\n2\n00:00:02,500 --> 00:00:04,000\nworld\n"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--address", srv.URL, "export", "song.mp4", "--srt", srtPath, "--mixed-audio")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(got.Segments) != 2 || got.Segments[1].Text != "world" {
		t.Fatalf("unexpected segments %+v", got.Segments)
	}
	if !got.UseMixedAudio {
		t.Fatal("mixed audio flag not forwarded")
	}
	if !strings.Contains(out, "exported_song.mp4") {
		t.Fatalf("missing export url in output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("missing target path in output:\n%s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing paths section:\n%s", data)
	}
}
