package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/rahagir-go/internal/history"
)

type (
	appendMsg       struct{ msg history.Message }
	removeMsg       struct{ id string }
	scrollMsg       struct{}
	clearInputMsg   struct{}
	inputEnabledMsg struct{ enabled bool }
	focusInputMsg   struct{}
)

// Sender delivers messages to a running program; *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface implements widget.Surface by posting messages to the Bubble Tea
// event loop, so every UI mutation happens on the program's goroutine.
// Calls made before Attach are dropped.
type Surface struct {
	mu sync.RWMutex
	p  Sender
}

// NewSurface returns a surface that is not yet attached to a program.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach connects the surface to p.
func (s *Surface) Attach(p Sender) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.RLock()
	p := s.p
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *Surface) Append(msg history.Message)   { s.send(appendMsg{msg: msg}) }
func (s *Surface) Remove(id string)             { s.send(removeMsg{id: id}) }
func (s *Surface) ScrollToBottom()              { s.send(scrollMsg{}) }
func (s *Surface) ClearInput()                  { s.send(clearInputMsg{}) }
func (s *Surface) SetInputEnabled(enabled bool) { s.send(inputEnabledMsg{enabled: enabled}) }
func (s *Surface) FocusInput()                  { s.send(focusInputMsg{}) }
