package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/killallgit/cortex-chat/pkg/config"
	"github.com/killallgit/cortex-chat/pkg/cortex"
	"github.com/killallgit/cortex-chat/pkg/logger"
	"github.com/killallgit/cortex-chat/pkg/stream"
	"github.com/killallgit/cortex-chat/pkg/warehouse"
)

// InteractiveSearchLimit is the search result count requested on every
// interactive turn
const InteractiveSearchLimit = 1

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrTurnInProgress = errors.New("a turn is already in progress")
	ErrNoExecutor     = errors.New("no query executor configured")
)

// Agent opens a streamed agent run
type Agent interface {
	Run(ctx context.Context, req cortex.RunRequest) (io.ReadCloser, error)
}

// Surface presents a turn to the user
type Surface interface {
	ShowUser(text string)
	ShowAssistant(display string, citations []stream.Citation)
	ShowSQL(sql string)
	ShowTable(result *warehouse.Result)
	ShowError(err error)
	Busy(active bool)
}

// State is where the orchestrator is within a turn
type State int32

const (
	StateIdle State = iota
	StateAwaitingAgent
	StateRenderingAnswer
	StateAwaitingQuery
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAgent:
		return "awaiting_agent"
	case StateRenderingAnswer:
		return "rendering_answer"
	case StateAwaitingQuery:
		return "awaiting_query"
	default:
		return "unknown"
	}
}

// Options are the fixed per-process turn parameters
type Options struct {
	Model       string
	Resources   config.ResourcesConfig
	SearchLimit int
}

// TurnOutcome records what happened during one turn
type TurnOutcome struct {
	Answer       stream.Answer
	Text         string
	Display      string
	Citations    []stream.Citation
	Result       *warehouse.Result
	TransportErr error
	QueryErr     error
	Skipped      int
	Duration     time.Duration
}

// Failed reports whether the agent call itself failed
func (o *TurnOutcome) Failed() bool {
	return o != nil && o.TransportErr != nil
}

// Orchestrator drives turns one at a time against the agent and the
// warehouse, keeping the transcript for the current conversation
type Orchestrator struct {
	agent      Agent
	executor   warehouse.Executor
	opts       Options
	transcript *Transcript

	mu    sync.Mutex
	state atomic.Int32
}

func NewOrchestrator(agent Agent, executor warehouse.Executor, opts Options) *Orchestrator {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = InteractiveSearchLimit
	}
	return &Orchestrator{
		agent:      agent,
		executor:   executor,
		opts:       opts,
		transcript: NewTranscript(),
	}
}

func (o *Orchestrator) Transcript() *Transcript {
	return o.transcript
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Reset starts a new conversation
func (o *Orchestrator) Reset() {
	o.transcript.Reset()
	logger.WithComponent("orchestrator").Info("Conversation reset", "conversation", o.transcript.ID())
}

// HandleTurn runs one user turn end to end. Remote failures are reported to
// the surface and recorded on the outcome; the returned error is only set
// when the turn was not attempted.
func (o *Orchestrator) HandleTurn(ctx context.Context, surface Surface, input string) (*TurnOutcome, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	if !o.mu.TryLock() {
		return nil, ErrTurnInProgress
	}
	defer o.mu.Unlock()
	defer o.setState(StateIdle)

	log := logger.WithComponent("orchestrator").With("conversation", o.transcript.ID())
	start := time.Now()
	outcome := &TurnOutcome{}
	defer func() { outcome.Duration = time.Since(start) }()

	user := NewUserTurn(input)
	o.transcript.Append(user)
	surface.ShowUser(user.Content)

	req := cortex.NewRunRequest(o.opts.Model, user.Content, o.opts.Resources, o.opts.SearchLimit)

	o.setState(StateAwaitingAgent)
	surface.Busy(true)
	body, err := o.agent.Run(ctx, req)
	if err != nil {
		surface.Busy(false)
		log.Error("Agent call failed", "error", err)
		outcome.TransportErr = err
		surface.ShowError(err)
		return outcome, nil
	}

	var asm stream.Assembler
	for event, err := range stream.Events(body) {
		if err != nil {
			asm.Skip(err)
			continue
		}
		asm.Add(event)
	}
	_ = body.Close()
	surface.Busy(false)

	o.setState(StateRenderingAnswer)
	outcome.Answer = asm.Answer()
	outcome.Skipped = asm.Skipped()
	outcome.Text = NormalizeCitationMarkers(outcome.Answer.Text)

	if outcome.Text != "" {
		o.transcript.Append(NewAssistantTurn(outcome.Text))
		outcome.Display = DisplayText(outcome.Text)
		outcome.Citations = VisibleCitations(outcome.Answer.Citations)
		surface.ShowAssistant(outcome.Display, outcome.Citations)
	}

	if outcome.Answer.SQL != "" {
		surface.ShowSQL(outcome.Answer.SQL)
		o.runQuery(ctx, surface, outcome)
	}

	log.Info("Turn complete",
		"text_len", len(outcome.Text),
		"citations", len(outcome.Answer.Citations),
		"has_sql", outcome.Answer.SQL != "",
		"skipped", outcome.Skipped,
		"duration", time.Since(start))
	return outcome, nil
}

func (o *Orchestrator) runQuery(ctx context.Context, surface Surface, outcome *TurnOutcome) {
	if o.executor == nil {
		outcome.QueryErr = ErrNoExecutor
		surface.ShowError(ErrNoExecutor)
		return
	}

	o.setState(StateAwaitingQuery)
	surface.Busy(true)
	result, err := o.executor.Query(ctx, outcome.Answer.SQL)
	surface.Busy(false)

	if err != nil {
		logger.WithComponent("orchestrator").Error("Query failed", "error", err)
		outcome.QueryErr = err
		surface.ShowError(err)
		return
	}

	outcome.Result = result
	if !result.IsEmpty() {
		surface.ShowTable(result)
	}
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}
