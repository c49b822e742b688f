// Package chat turns user prompts into routing-service calls and writes the
// outcome back into the session transcript.
//
// The orchestrator moves Idle -> Sending -> Idle. While Sending, further
// submissions are dropped without a trace, so at most one call is ever in
// flight. A submission is split in three steps so an event loop can run the
// network call off its own goroutine:
//
//	req, ok := o.Begin(prompt)      // user turn appended, state Sending
//	res := o.Dispatch(ctx, req)     // outbound call, no state touched
//	o.Complete(req, res)            // assistant turn appended, state Idle
//
// Submit runs all three on the caller's goroutine.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jackwu/routerchat/model"
	"github.com/jackwu/routerchat/router"
	"github.com/jackwu/routerchat/session"
)

type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Generator performs the outbound call. *router.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*router.Reply, error)
}

// Request identifies one accepted submission.
type Request struct {
	ID     string
	Prompt string // trimmed
}

// Result is the outcome of Dispatch. Exactly one of Reply and Err is set.
type Result struct {
	Reply *router.Reply
	Err   error
}

type Orchestrator struct {
	mu       sync.Mutex
	state    State
	inflight string

	store  *session.Store
	gen    Generator
	logger *slog.Logger
}

func NewOrchestrator(store *session.Store, gen Generator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:  store,
		gen:    gen,
		logger: logger,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Busy reports whether a call is in flight.
func (o *Orchestrator) Busy() bool {
	return o.State() == StateSending
}

// Begin accepts prompt if it is non-blank and nothing is in flight. On accept
// the trimmed prompt is appended as a user turn before Begin returns.
func (o *Orchestrator) Begin(prompt string) (Request, bool) {
	text := strings.TrimSpace(prompt)
	if text == "" {
		return Request{}, false
	}

	o.mu.Lock()
	if o.state == StateSending {
		o.mu.Unlock()
		o.logger.Debug("submission dropped, request in flight")
		return Request{}, false
	}
	req := Request{ID: uuid.NewString(), Prompt: text}
	o.state = StateSending
	o.inflight = req.ID
	o.mu.Unlock()

	// a panicking observer must not leave the request in flight
	appended := false
	defer func() {
		if !appended {
			o.reset()
		}
	}()
	o.store.Append(model.UserTurn(text))
	appended = true
	o.logger.Info("prompt submitted", "request_id", req.ID, "length", len(text))
	return req, true
}

// Dispatch performs the outbound call for req. It is safe to call from any
// goroutine and never changes orchestrator state. A panicking generator is
// reported as a request failure.
func (o *Orchestrator) Dispatch(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: &router.RequestFailure{Op: "generate", Err: fmt.Errorf("generator panic: %v", r)}}
		}
	}()

	reply, err := o.gen.Generate(router.WithRequestID(ctx, req.ID), req.Prompt)
	if err == nil && reply == nil {
		err = &router.RequestFailure{Op: "generate", Err: router.ErrMalformedResponse}
	}
	if err != nil {
		return Result{Err: err}
	}
	return Result{Reply: reply}
}

// Complete records the outcome of req and returns to Idle. The return to Idle
// runs even if recording panics. Results for a request that is not in flight
// are ignored.
func (o *Orchestrator) Complete(req Request, res Result) {
	o.mu.Lock()
	current := o.state == StateSending && o.inflight == req.ID
	o.mu.Unlock()
	if !current {
		o.logger.Warn("stale result ignored", "request_id", req.ID)
		return
	}

	defer o.reset()

	if res.Err != nil || res.Reply == nil {
		o.logger.Error("request failed", "request_id", req.ID, "error", res.Err)
		o.store.Append(model.FallbackTurn())
		return
	}

	meta := model.Meta{
		ModelUsed:       string(res.Reply.ModelUsed),
		CostSaved:       string(res.Reply.CostSaved),
		RoutingDecision: string(res.Reply.RouterDecision),
	}
	o.store.Append(model.AssistantTurn(res.Reply.ContentText(), meta))
	o.logger.Info("reply received",
		"request_id", req.ID,
		"model", meta.ModelUsed,
		"decision", meta.RoutingDecision,
		"cost_saved", meta.CostSaved,
	)
}

// Submit runs a whole submission on the calling goroutine and reports whether
// the prompt was accepted.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) bool {
	req, ok := o.Begin(prompt)
	if !ok {
		return false
	}
	o.Complete(req, o.Dispatch(ctx, req))
	return true
}

func (o *Orchestrator) reset() {
	o.mu.Lock()
	o.state = StateIdle
	o.inflight = ""
	o.mu.Unlock()
}
