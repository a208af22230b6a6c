// Package history keeps the conversation log for the lifetime of the process.
// Messages are only ever appended.
package history

import (
	"fmt"
	"html"
	"io"
	"os"
	"sync"

	"github.com/comigor/rahagir-go/internal/format"
)

// Log is an append-only, concurrency-safe list of messages.
type Log struct {
	mu       sync.Mutex
	messages []Message
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds msg to the end of the log.
func (l *Log) Append(msg Message) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// List returns a copy of all messages in the order they were appended.
func (l *Log) List() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

const transcriptHead = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<div id="chat-container">
`

const transcriptTail = `</div>
</body>
</html>
`

// Export writes the log as a standalone HTML page. Message text passes
// through format.Format, so it is escaped and only <br> and <strong> appear.
func (l *Log) Export(w io.Writer, title string) error {
	if _, err := fmt.Fprintf(w, transcriptHead, html.EscapeString(title)); err != nil {
		return err
	}
	for _, m := range l.List() {
		if _, err := fmt.Fprintf(w, "<div class=\"message %s-message\">%s</div>\n", m.Origin, format.Format(m.Text).HTML()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, transcriptTail)
	return err
}

// ExportFile writes the transcript to path, replacing any existing file.
func (l *Log) ExportFile(path, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	if err := l.Export(f, title); err != nil {
		f.Close()
		return fmt.Errorf("write transcript: %w", err)
	}
	return f.Close()
}
