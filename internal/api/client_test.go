package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"status":"ok"}`))
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No file uploaded"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("plain failure"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.Get(ctx, "/ok", &resp); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}

	err := c.Get(ctx, "/bad", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadRequest || se.Message != "No file uploaded" {
		t.Errorf("unexpected StatusError %+v", se)
	}

	err = c.Get(ctx, "/other", nil)
	if !errors.As(err, &se) || se.Message != "plain failure" {
		t.Errorf("expected raw body in error, got %v", err)
	}
}

func TestClient_PostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		w.Write([]byte(`{"name":"` + fh.Filename + `","docType":"` + r.FormValue("docType") + `","size":` + strconv.Itoa(len(data)) + `}`))
	}))
	defer srv.Close()

	var resp struct {
		Name    string `json:"name"`
		DocType string `json:"docType"`
		Size    int    `json:"size"`
	}
	err := NewClient(srv.URL).PostMultipart(context.Background(), "/api/review",
		Upload{Field: "file", FileName: "nda.txt", Content: strings.NewReader("hello")},
		map[string]string{"docType": "NDA"}, &resp)
	if err != nil {
		t.Fatalf("PostMultipart failed: %v", err)
	}
	if resp.Name != "nda.txt" || resp.DocType != "NDA" || resp.Size != 5 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !bytes.Contains(body, []byte(`"docType":"NDA"`)) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"docType is required"}`))
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="NDA-draft.docx"`)
		w.Write([]byte("PK"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, hdr, err := c.Download(context.Background(), "/api/draft", map[string]string{"docType": "NDA"})
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "PK" || !strings.Contains(hdr.Get("Content-Disposition"), "NDA-draft.docx") {
		t.Errorf("unexpected download %q %v", data, hdr)
	}

	if _, _, err := c.Download(context.Background(), "/api/draft", map[string]string{}); err == nil {
		t.Error("expected error for missing docType")
	}
}

func TestClient_WaitReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.WaitReady(context.Background(), 5, time.Millisecond); err != nil {
		t.Fatalf("WaitReady failed: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 health calls, got %d", got)
	}

	calls.Store(-100)
	if err := c.WaitReady(context.Background(), 2, time.Millisecond); err == nil {
		t.Error("expected WaitReady to give up")
	}
}

type fakeEndpoint struct {
	method, path string
	init         bool
	noCommand    bool
}

func (e *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) }
}

func (e *fakeEndpoint) RequiresGrader() bool { return e.init }

func (e *fakeEndpoint) Command(func() string) *cobra.Command {
	if e.noCommand {
		return nil
	}
	return &cobra.Command{Use: strings.ToLower(e.method) + e.path}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeEndpoint{method: "GET", path: "/health"})
	r.Register(&fakeEndpoint{method: "POST", path: "/api/review", init: true})
	r.Register(&fakeEndpoint{method: "GET", path: "/api/prompts"})
	r.Register(&fakeEndpoint{method: "GET", path: "/api/prompts/{key...}"})
	r.Register(&fakeEndpoint{method: "GET", path: "/hidden", noCommand: true})

	var guarded atomic.Int32
	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			guarded.Add(1)
			next(w, req)
		}
	})

	for _, tc := range []struct{ method, path string }{
		{"GET", "/health"}, {"POST", "/api/review"}, {"GET", "/api/prompts/a.b"},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s %s = %d", tc.method, tc.path, rec.Code)
		}
	}
	if guarded.Load() != 1 {
		t.Errorf("init middleware ran %d times, want 1", guarded.Load())
	}

	cmd := r.BuildCommands(func() string { return "" })
	names := map[string]int{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = len(c.Commands())
	}
	if n, ok := names["prompts"]; !ok || n != 2 {
		t.Errorf("expected prompts group with 2 commands, got %v", names)
	}
	if len(names) != 3 {
		t.Errorf("expected 3 top-level commands, got %v", names)
	}
}

type summarized struct{ Name string }

func (s summarized) Summary() string { return "summary of " + s.Name }

func TestOutputTo(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		data   any
		want   string
	}{
		{"json", OutputFormatJSON, map[string]int{"score": 80}, "{\n  \"score\": 80\n}\n"},
		{"yaml", OutputFormatYAML, map[string]int{"score": 80}, "score: 80\n"},
		{"text summarizer", OutputFormatText, summarized{Name: "nda"}, "summary of nda\n"},
		{"text falls back to yaml", OutputFormatText, map[string]string{"band": "LOW"}, "band: LOW\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputTo(&buf, tt.format, tt.data); err != nil {
				t.Fatalf("OutputTo() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if err := OutputTo(&bytes.Buffer{}, OutputFormat("xml"), nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputFormatYAML, "JSON": OutputFormatJSON, " text ": OutputFormatText} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
