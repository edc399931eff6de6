package sse

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// streamRecorder is a flushable response writer capturing the raw
// stream bytes.
type streamRecorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	header http.Header
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: http.Header{}}
}

func (r *streamRecorder) Header() http.Header { return r.header }

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *streamRecorder) WriteHeader(int) {}

func (r *streamRecorder) Flush() {}

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func TestNewWriterSetsStreamHeaders(t *testing.T) {
	rec := newStreamRecorder()

	if _, err := NewWriter(rec); err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if got := rec.header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.header.Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestWriterFrames(t *testing.T) {
	rec := newStreamRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.SendJSON(map[string]string{"content": "hi"}); err != nil {
		t.Fatalf("SendJSON: %v", err)
	}
	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive: %v", err)
	}
	if err := w.SendDone(); err != nil {
		t.Fatalf("SendDone: %v", err)
	}

	want := "data: {\"content\":\"hi\"}\n\n: keepalive\n\ndata: [DONE]\n\n"
	if rec.body() != want {
		t.Errorf("stream = %q, want %q", rec.body(), want)
	}
}

// Keep-alives run on their own goroutine while the handler loop writes
// data frames. Interleaved writes on the shared connection must still
// come out as whole frames.
func TestWriterConcurrentFramesStayWhole(t *testing.T) {
	rec := newStreamRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	const frames = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < frames; i++ {
			if err := w.SendJSON(map[string]string{"content": "chunk"}); err != nil {
				t.Errorf("SendJSON: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < frames; i++ {
			if err := w.WriteKeepAlive(); err != nil {
				t.Errorf("WriteKeepAlive: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if err := w.SendDone(); err != nil {
		t.Fatalf("SendDone: %v", err)
	}

	dataFrames := 0
	keepAlives := 0
	for _, frame := range strings.Split(strings.TrimSuffix(rec.body(), "\n\n"), "\n\n") {
		switch frame {
		case `data: {"content":"chunk"}`:
			dataFrames++
		case ": keepalive":
			keepAlives++
		case "data: [DONE]":
		default:
			t.Fatalf("corrupted frame %q", frame)
		}
	}
	if dataFrames != frames || keepAlives != frames {
		t.Errorf("frames = %d data, %d keepalive, want %d each", dataFrames, keepAlives, frames)
	}
}
