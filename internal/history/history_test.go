package history

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_AppendKeepsOrder(t *testing.T) {
	l := NewLog()
	l.Append(Message{ID: "1", Origin: OriginUser, Text: "hi"})
	l.Append(Message{ID: "2", Origin: OriginBot, Text: "hello"})

	got := l.List()
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "2", got[1].ID)

	got[0].Text = "mutated"
	require.Equal(t, "hi", l.List()[0].Text, "List must return a copy")
}

func TestLog_ConcurrentAppend(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(Message{Text: "x"})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, l.Len())
}

func TestLog_ExportEscapes(t *testing.T) {
	l := NewLog()
	l.Append(Message{Origin: OriginUser, Text: "<b>plain</b>"})
	l.Append(Message{Origin: OriginBot, Text: "Line one\n**Day 1** & more"})

	var buf bytes.Buffer
	require.NoError(t, l.Export(&buf, "Trip <chat>"))
	out := buf.String()

	require.Contains(t, out, "<title>Trip &lt;chat&gt;</title>")
	require.Contains(t, out, `<div class="message user-message">&lt;b&gt;plain&lt;/b&gt;</div>`)
	require.Contains(t, out, `<div class="message bot-message">Line one<br><strong>Day 1</strong> &amp; more</div>`)
	require.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestLog_ExportFile(t *testing.T) {
	l := NewLog()
	l.Append(Message{Origin: OriginBot, Text: "saved"})
	path := filepath.Join(t.TempDir(), "transcript.html")

	require.NoError(t, l.ExportFile(path, "Rahagir"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "saved")
}
