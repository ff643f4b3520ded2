package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/danmuck/courseselect/internal/auth"
	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/intent"
	"github.com/danmuck/courseselect/internal/observability"
	"github.com/danmuck/courseselect/internal/protocol"
	"github.com/danmuck/courseselect/internal/reconcile"
	"github.com/rs/zerolog/log"
)

var (
	ErrRunnerStarted = errors.New("session: runner already started")
	ErrRunnerStopped = errors.New("session: runner stopped")
)

// RunnerConfig wires a Runner to its endpoint and collaborators.
type RunnerConfig struct {
	Origin      string
	Dialect     protocol.Dialect
	Session     Config
	Credentials auth.Source
	// Notifier is called on the loop goroutine and must not block.
	Notifier reconcile.Notifier
}

// Runner is the single event loop. It is the only goroutine that touches
// the model: inbound lines and user actions are handled one at a time in
// arrival order, and readers see immutable snapshots.
type Runner struct {
	target     string
	cfg        Config
	creds      auth.Source
	model      *enrollment.Model
	engine     *reconcile.Engine
	controller *intent.Controller
	rng        *rand.Rand

	actions  chan action
	done     chan struct{}
	started  atomic.Bool
	snapshot atomic.Pointer[enrollment.Snapshot]

	// loop-owned
	conn    *Conn
	loopCtx context.Context
}

type action struct {
	run    func() error
	result chan error
}

type eventKind int

const (
	eventOpened eventKind = iota
	eventLine
	eventClosed
	eventFailed
)

type sessionEvent struct {
	kind eventKind
	conn *Conn
	line string
	err  error
}

func NewRunner(cfg RunnerConfig, model *enrollment.Model) (*Runner, error) {
	target, err := DeriveURL(cfg.Origin)
	if err != nil {
		return nil, err
	}
	sessionCfg := cfg.Session.WithDefaults()
	if err := sessionCfg.ValidateClientTransport(target); err != nil {
		return nil, err
	}

	r := &Runner{
		target:  target,
		cfg:     sessionCfg,
		creds:   cfg.Credentials,
		model:   model,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		actions: make(chan action),
		done:    make(chan struct{}),
	}
	userNotifier := cfg.Notifier
	r.engine = reconcile.NewEngine(model, reconcile.NotifierFunc(func(n reconcile.Notice) {
		observability.RecordNotice(n.Severity.String())
		if userNotifier != nil {
			userNotifier.Notify(n)
		}
	}))
	r.controller, err = intent.NewController(model, intent.SenderFunc(r.send), cfg.Dialect)
	if err != nil {
		return nil, err
	}
	r.publish()
	return r, nil
}

// Target is the websocket URL derived from the origin.
func (r *Runner) Target() string { return r.target }

// Snapshot returns the state published after the most recent event.
func (r *Runner) Snapshot() enrollment.Snapshot {
	return *r.snapshot.Load()
}

// Run connects and serves until ctx ends, the server reports the session
// as unauthenticated, or MaxConnectAttempts consecutive dials fail.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrRunnerStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(r.done)
	r.loopCtx = ctx

	inbound := make(chan sessionEvent)
	go r.connect(ctx, inbound)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-r.actions:
			a.result <- a.run()
			r.publish()
		case ev := <-inbound:
			err := r.handle(ev)
			r.publish()
			if err != nil {
				return err
			}
		}
	}
}

func (r *Runner) Toggle(ctx context.Context, courseID string, checked bool) error {
	return r.do(ctx, func() error { return r.controller.Toggle(courseID, checked) })
}

func (r *Runner) ToggleControl(ctx context.Context, controlID string, checked bool) error {
	return r.do(ctx, func() error { return r.controller.ToggleControl(controlID, checked) })
}

func (r *Runner) Confirm(ctx context.Context) error {
	return r.do(ctx, r.controller.Confirm)
}

func (r *Runner) Unconfirm(ctx context.Context) error {
	return r.do(ctx, r.controller.Unconfirm)
}

func (r *Runner) do(ctx context.Context, fn func() error) error {
	a := action{run: fn, result: make(chan error, 1)}
	select {
	case r.actions <- a:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRunnerStopped
	}
	select {
	case err := <-a.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) handle(ev sessionEvent) error {
	switch ev.kind {
	case eventOpened:
		r.conn = ev.conn
		r.model.SetConnected(true)
		log.Info().Str("target", r.target).Msg("session.Runner connected")
		if err := r.send(protocol.Hello()); err != nil {
			log.Warn().Err(err).Msg("session.Runner hello failed")
		}
	case eventLine:
		if ev.conn != r.conn {
			return nil
		}
		msg := protocol.Decode(ev.line)
		_, known := protocol.LookupCommand(msg.Command)
		observability.RecordInbound(msg.Command, known)
		log.Debug().Str("line", ev.line).Msg("session.Runner recv")
		err := r.engine.Dispatch(ev.line)
		if errors.Is(err, reconcile.ErrUnauthenticated) {
			return err
		}
		if err != nil {
			log.Warn().Err(err).Str("line", ev.line).Msg("session.Runner dispatch")
		}
	case eventClosed:
		if ev.conn == r.conn {
			r.conn = nil
		}
		r.model.Disconnect()
		if code, reason, ok := CloseReason(ev.err); ok {
			log.Warn().Int("code", int(code)).Str("reason", reason).Msg("session.Runner closed by server")
		} else {
			log.Warn().Err(ev.err).Msg("session.Runner connection lost")
		}
	case eventFailed:
		return fmt.Errorf("session: giving up on %s: %w", r.target, ev.err)
	}
	return nil
}

// send runs on the loop goroutine only.
func (r *Runner) send(line string) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	if err := r.conn.WriteLine(r.loopCtx, line); err != nil {
		return err
	}
	observability.RecordOutbound(protocol.Decode(line).Command)
	log.Debug().Str("line", line).Msg("session.Runner send")
	return nil
}

func (r *Runner) publish() {
	snap := r.model.Snapshot()
	r.snapshot.Store(&snap)
}

// connect owns dialing and reading. It hands every connection and line to
// the loop through out and never touches the model itself.
func (r *Runner) connect(ctx context.Context, out chan<- sessionEvent) {
	var attempt int
	for {
		attempt++
		conn, err := Dial(ctx, r.cfg, r.target, r.creds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			observability.RecordConnect(false)
			log.Warn().Int("attempt", attempt).Str("target", r.target).Err(err).Msg("session.Runner dial")
			if !r.shouldRetry(attempt) {
				r.emit(ctx, out, sessionEvent{kind: eventFailed, err: err})
				return
			}
			if err := r.sleepBackoff(ctx, attempt); err != nil {
				return
			}
			continue
		}
		observability.RecordConnect(true)
		attempt = 0

		if !r.emit(ctx, out, sessionEvent{kind: eventOpened, conn: conn}) {
			_ = conn.CloseNow()
			return
		}
		err = r.pump(ctx, conn, out)
		_ = conn.CloseNow()
		if !r.emit(ctx, out, sessionEvent{kind: eventClosed, conn: conn, err: err}) {
			return
		}
		if err := r.sleepBackoff(ctx, 1); err != nil {
			return
		}
	}
}

func (r *Runner) pump(ctx context.Context, conn *Conn, out chan<- sessionEvent) error {
	for {
		line, err := conn.ReadLine(ctx)
		if err != nil {
			return err
		}
		if !r.emit(ctx, out, sessionEvent{kind: eventLine, conn: conn, line: line}) {
			return ctx.Err()
		}
	}
}

func (r *Runner) emit(ctx context.Context, out chan<- sessionEvent, ev sessionEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Runner) shouldRetry(attempt int) bool {
	if r.cfg.MaxConnectAttempts <= 0 {
		return true
	}
	return attempt < r.cfg.MaxConnectAttempts
}

func (r *Runner) sleepBackoff(ctx context.Context, attempt int) error {
	delay := NextBackoffDelay(r.cfg.Backoff, attempt, r.rng)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
