package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/comigor/rahagir-go/internal/history"
	"github.com/comigor/rahagir-go/internal/identity"
	"github.com/comigor/rahagir-go/internal/planner"
	"github.com/comigor/rahagir-go/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingSurface mirrors Surface and records every call in order.
type recordingSurface struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSurface) record(format string, args ...any) {
	s.mu.Lock()
	s.events = append(s.events, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

func (s *recordingSurface) Append(msg history.Message) {
	s.record("append %s %q", msg.Origin, msg.Text)
}
func (s *recordingSurface) Remove(id string)             { s.record("remove %s", strings.SplitN(id, "-", 2)[0]) }
func (s *recordingSurface) ScrollToBottom()              { s.record("scroll") }
func (s *recordingSurface) ClearInput()                  { s.record("clear") }
func (s *recordingSurface) SetInputEnabled(enabled bool) { s.record("enabled %t", enabled) }
func (s *recordingSurface) FocusInput()                  { s.record("focus") }

func (s *recordingSurface) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// mockPlanner mirrors planner.Client.
type mockPlanner struct {
	PlanTripFunc func(ctx context.Context, req planner.Request) (*planner.Response, error)

	mu    sync.Mutex
	calls []planner.Request
}

func (m *mockPlanner) PlanTrip(ctx context.Context, req planner.Request) (*planner.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.PlanTripFunc != nil {
		return m.PlanTripFunc(ctx, req)
	}
	return &planner.Response{Status: planner.StatusSuccess, Message: "ok"}, nil
}

func (m *mockPlanner) Calls() []planner.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]planner.Request(nil), m.calls...)
}

func newTestWidget(client planner.Client) (*Widget, *recordingSurface, *history.Log) {
	surface := &recordingSurface{}
	log := history.NewLog()
	w := New(surface, client, identity.New(storage.NewMemory(), identity.DefaultKey), log)
	w.now = func() time.Time { return time.UnixMilli(1736500000000) }
	return w, surface, log
}

func respond(resp *planner.Response, err error) *mockPlanner {
	return &mockPlanner{PlanTripFunc: func(context.Context, planner.Request) (*planner.Response, error) {
		return resp, err
	}}
}

func TestSubmit_Success(t *testing.T) {
	client := respond(&planner.Response{Status: "Success", Message: "Hi"}, nil)
	w, surface, log := newTestWidget(client)

	require.NoError(t, w.Submit(context.Background(), "  plan my trip \n"))

	require.Equal(t, []string{
		`append user "plan my trip"`,
		"scroll",
		"clear",
		"enabled false",
		`append bot "Thinking..."`,
		"scroll",
		"remove loading",
		`append bot "Hi"`,
		"scroll",
		"enabled true",
		"focus",
	}, surface.Events())

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "plan my trip", calls[0].RawUserInput)
	require.True(t, strings.HasPrefix(calls[0].UserID, identity.Prefix))

	msgs := log.List()
	require.Len(t, msgs, 2)
	require.Equal(t, history.OriginUser, msgs[0].Origin)
	require.Equal(t, "Hi", msgs[1].Text)
	require.Equal(t, StateIdle, w.State())
}

func TestSubmit_ApplicationError(t *testing.T) {
	w, surface, _ := newTestWidget(respond(&planner.Response{Status: "Error", Detail: "bad input"}, nil))

	require.NoError(t, w.Submit(context.Background(), "x"))

	events := surface.Events()
	require.Equal(t, `append bot "Sorry, I encountered an error: bad input"`, events[len(events)-4])
	require.Equal(t, []string{"enabled true", "focus"}, events[len(events)-2:])
}

func TestSubmit_TransportError(t *testing.T) {
	w, surface, _ := newTestWidget(respond(nil, &planner.TransportError{Op: "send", Err: errors.New("connection refused")}))

	require.NoError(t, w.Submit(context.Background(), "x"))

	events := surface.Events()
	require.Equal(t, "remove loading", events[len(events)-5])
	require.Equal(t, `append bot "Network error. Please try again."`, events[len(events)-4])
	require.Equal(t, StateIdle, w.State())
}

func TestSubmit_BlankInputIsNoop(t *testing.T) {
	client := &mockPlanner{}
	w, surface, log := newTestWidget(client)

	for _, in := range []string{"", "   ", "\n\t "} {
		require.NoError(t, w.Submit(context.Background(), in))
	}
	require.Empty(t, surface.Events())
	require.Empty(t, client.Calls())
	require.Zero(t, log.Len())
}

func TestSubmit_UserMessageRenderedBeforeRequest(t *testing.T) {
	var surface *recordingSurface
	var seen []string
	client := &mockPlanner{PlanTripFunc: func(context.Context, planner.Request) (*planner.Response, error) {
		seen = surface.Events()
		return &planner.Response{Status: planner.StatusSuccess, Message: "done"}, nil
	}}
	w, s, _ := newTestWidget(client)
	surface = s

	require.NoError(t, w.Submit(context.Background(), "hello"))

	require.Equal(t, `append user "hello"`, seen[0])
	require.Contains(t, seen, "enabled false")
	require.Contains(t, seen, `append bot "Thinking..."`)
	require.NotContains(t, seen, "enabled true")
}

func TestSubmit_SameIdentityAcrossSubmissions(t *testing.T) {
	client := &mockPlanner{}
	w, _, _ := newTestWidget(client)

	require.NoError(t, w.Submit(context.Background(), "one"))
	require.NoError(t, w.Submit(context.Background(), "two"))

	calls := client.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, calls[0].UserID, calls[1].UserID)
}

func TestSubmit_ConcurrentSubmissionRejected(t *testing.T) {
	release := make(chan struct{})
	client := &mockPlanner{PlanTripFunc: func(context.Context, planner.Request) (*planner.Response, error) {
		<-release
		return &planner.Response{Status: planner.StatusSuccess, Message: "first"}, nil
	}}
	w, surface, _ := newTestWidget(client)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background(), "first") }()

	require.Eventually(t, w.Busy, time.Second, 5*time.Millisecond)
	before := len(surface.Events())

	require.ErrorIs(t, w.Submit(context.Background(), "second"), ErrBusy)
	require.Len(t, surface.Events(), before, "rejected submission must render nothing")

	close(release)
	require.NoError(t, <-done)
	require.Len(t, client.Calls(), 1)
	require.False(t, w.Busy())

	require.NoError(t, w.Submit(context.Background(), "third"))
	require.Len(t, client.Calls(), 2)
}

func TestSubmit_CancelReenablesInput(t *testing.T) {
	client := &mockPlanner{PlanTripFunc: func(ctx context.Context, _ planner.Request) (*planner.Response, error) {
		<-ctx.Done()
		return nil, &planner.TransportError{Op: "send", Err: ctx.Err()}
	}}
	w, surface, _ := newTestWidget(client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Submit(ctx, "slow") }()

	require.Eventually(t, w.Busy, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := surface.Events()
	require.Equal(t, `append bot "Network error. Please try again."`, events[len(events)-4])
	require.Equal(t, []string{"enabled true", "focus"}, events[len(events)-2:])
	require.Equal(t, StateIdle, w.State())
}

func TestSubmit_PlaceholderRemovedExactlyOnce(t *testing.T) {
	w, surface, _ := newTestWidget(respond(&planner.Response{Status: "Success", Message: "a"}, nil))

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Submit(context.Background(), "again"))
	}

	var placeholders, removals int
	for _, e := range surface.Events() {
		switch e {
		case `append bot "Thinking..."`:
			placeholders++
		case "remove loading":
			removals++
		}
	}
	require.Equal(t, 3, placeholders)
	require.Equal(t, 3, removals)
}
