package tui

import (
	"strings"
	"sync"
)

// LogWriter is an io.Writer for the standard logger that forwards each line
// to the dashboard. Lines are dropped when the dashboard falls behind.
type LogWriter struct {
	mu      sync.Mutex
	partial string
	lines   chan string
}

// NewLogWriter creates a LogWriter buffering up to size lines.
func NewLogWriter(size int) *LogWriter {
	return &LogWriter{lines: make(chan string, size)}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	text := w.partial + string(p)
	parts := strings.Split(text, "\n")
	w.partial = parts[len(parts)-1]

	for _, line := range parts[:len(parts)-1] {
		if line == "" {
			continue
		}
		select {
		case w.lines <- line:
		default:
		}
	}
	return len(p), nil
}

// Lines returns the channel of complete log lines.
func (w *LogWriter) Lines() <-chan string {
	return w.lines
}
