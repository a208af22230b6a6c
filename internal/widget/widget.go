// Package widget implements the chat widget: it renders the conversation,
// submits user text to the trip planner and shows the outcome.
package widget

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"

	"github.com/comigor/rahagir-go/internal/history"
	"github.com/comigor/rahagir-go/internal/logger"
	"github.com/comigor/rahagir-go/internal/planner"
)

// FSM States
type FSMState stateless.State

var (
	StateIdle      FSMState = "Idle"
	StateSending   FSMState = "Sending"   // input disabled, placeholder shown
	StateSucceeded FSMState = "Succeeded" // reply rendered
	StateFailed    FSMState = "Failed"    // error message rendered
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerSubmit  FSMTrigger = "Submit"
	TriggerSucceed FSMTrigger = "Succeed"
	TriggerFail    FSMTrigger = "Fail"
	TriggerSettle  FSMTrigger = "Settle"
)

const (
	PlaceholderText        = "Thinking..."
	ApplicationErrorPrefix = "Sorry, I encountered an error: "
	NetworkErrorText       = "Network error. Please try again."
)

// ErrBusy is returned by Submit while an earlier submission is in flight.
var ErrBusy = errors.New("widget: a request is already in flight")

// Surface is where the widget draws. Implementations must be safe to call
// from the goroutine running Submit.
type Surface interface {
	// Append adds a message node to the conversation log.
	Append(msg history.Message)
	// Remove deletes the node with the given message ID.
	Remove(id string)
	// ScrollToBottom scrolls the log so the newest message is visible.
	ScrollToBottom()
	ClearInput()
	SetInputEnabled(enabled bool)
	FocusInput()
}

// Identities resolves the persisted user token.
type Identities interface {
	Resolve(ctx context.Context) string
}

// Widget is the chat widget.
type Widget struct {
	surface Surface
	client  planner.Client
	ids     Identities
	log     *history.Log

	mu            sync.Mutex
	fsm           *stateless.StateMachine
	placeholderID string

	now   func() time.Time
	newID func() string
}

// New creates a widget drawing on surface and recording messages in log.
func New(surface Surface, client planner.Client, ids Identities, log *history.Log) *Widget {
	w := &Widget{
		surface: surface,
		client:  client,
		ids:     ids,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	w.fsm = w.newStateMachine()
	return w
}

// newStateMachine wires one submission: Idle -> Sending -> Succeeded|Failed -> Idle.
// The placeholder is removed when Sending is left, before the outcome renders.
func (w *Widget) newStateMachine() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(TriggerSubmit, StateSending).
		OnEntryFrom(TriggerSettle, func(_ context.Context, _ ...any) error {
			w.surface.SetInputEnabled(true)
			w.surface.FocusInput()
			return nil
		})

	fsm.Configure(StateSending).
		OnEntry(func(_ context.Context, _ ...any) error {
			w.surface.ClearInput()
			w.surface.SetInputEnabled(false)
			now := w.now()
			w.placeholderID = "loading-" + strconv.FormatInt(now.UnixMilli(), 10)
			w.surface.Append(history.Message{ID: w.placeholderID, Origin: history.OriginBot, Text: PlaceholderText, CreatedAt: now})
			w.surface.ScrollToBottom()
			return nil
		}).
		OnExit(func(_ context.Context, _ ...any) error {
			w.surface.Remove(w.placeholderID)
			w.placeholderID = ""
			return nil
		}).
		Permit(TriggerSucceed, StateSucceeded).
		Permit(TriggerFail, StateFailed)

	fsm.Configure(StateSucceeded).
		OnEntry(w.renderReply).
		Permit(TriggerSettle, StateIdle)

	fsm.Configure(StateFailed).
		OnEntry(w.renderReply).
		Permit(TriggerSettle, StateIdle)

	return fsm
}

func (w *Widget) renderReply(_ context.Context, args ...any) error {
	if len(args) == 0 {
		return errors.New("widget: outcome fired without reply text")
	}
	text, _ := args[0].(string)
	w.RenderMessage(text, history.OriginBot)
	return nil
}

// RenderMessage appends a message to the log and the surface, then scrolls
// the surface to the bottom.
func (w *Widget) RenderMessage(text string, origin history.Origin) history.Message {
	msg := history.Message{ID: w.newID(), Origin: origin, Text: text, CreatedAt: w.now()}
	w.log.Append(msg)
	w.surface.Append(msg)
	w.surface.ScrollToBottom()
	return msg
}

// State reports the current submission state.
func (w *Widget) State() FSMState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsm.MustState()
}

// Busy reports whether a submission is in flight.
func (w *Widget) Busy() bool {
	return w.State() == StateSending
}

// Submit sends userText to the planner and renders the outcome. Blank input
// is ignored. It blocks until the outcome is rendered and the input is
// re-enabled; cancelling ctx aborts the request and takes the network error
// path. A call made while another is in flight returns ErrBusy and renders
// nothing.
func (w *Widget) Submit(ctx context.Context, userText string) error {
	text := strings.TrimSpace(userText)
	if text == "" {
		return nil
	}
	// Transitions must complete even when ctx is cancelled.
	fireCtx := context.WithoutCancel(ctx)

	w.mu.Lock()
	if ok, _ := w.fsm.CanFire(TriggerSubmit); !ok {
		w.mu.Unlock()
		return ErrBusy
	}
	w.RenderMessage(text, history.OriginUser)
	err := w.fsm.FireCtx(fireCtx, TriggerSubmit)
	w.mu.Unlock()
	if err != nil {
		return err
	}

	userID := w.ids.Resolve(ctx)
	logger.L.Debug("submitting plan_trip", "user_id", userID, "length", len(text))

	resp, err := w.client.PlanTrip(ctx, planner.Request{RawUserInput: text, UserID: userID})
	if err == nil {
		err = resp.Err()
	}
	trigger, reply := outcome(resp, err)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fsm.FireCtx(fireCtx, trigger, reply); err != nil {
		logger.L.Error("FSM fire error", "trigger", trigger, "error", err)
		return err
	}
	return w.fsm.FireCtx(fireCtx, TriggerSettle)
}

func outcome(resp *planner.Response, err error) (FSMTrigger, string) {
	var appErr *planner.ApplicationError
	switch {
	case err == nil:
		if resp.TripID != "" {
			logger.L.Debug("trip planned", "trip_id", string(resp.TripID))
		}
		return TriggerSucceed, string(resp.Message)
	case errors.As(err, &appErr):
		logger.L.Warn("planner returned an error", "status", appErr.Status, "detail", appErr.Detail)
		return TriggerFail, ApplicationErrorPrefix + appErr.Detail
	default:
		logger.L.Error("plan_trip request failed", "error", err)
		return TriggerFail, NetworkErrorText
	}
}
