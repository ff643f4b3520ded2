package reconcile

import (
	"errors"
	"fmt"

	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthenticated = errors.New("reconcile: session unauthenticated")
	ErrUnknownCourse   = errors.New("reconcile: event for unknown course")
)

// Engine applies server events to an enrollment model.
type Engine struct {
	model    *enrollment.Model
	notifier Notifier
}

func NewEngine(model *enrollment.Model, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Engine{model: model, notifier: notifier}
}

// Dispatch decodes and applies one inbound line. A line that cannot be
// parsed is reported as a fatal notice and leaves the model untouched.
func (e *Engine) Dispatch(line string) error {
	msg := protocol.Decode(line)
	ev, err := protocol.ParseEvent(msg)
	if err != nil {
		cmd, _ := protocol.LookupCommand(msg.Command)
		text := err.Error()
		if errors.Is(err, protocol.ErrUnknownCommand) {
			text = fmt.Sprintf("Invalid command %s received from socket. Something is wrong.", msg.Command)
		}
		e.fatal(cmd, text)
		return err
	}
	return e.Apply(ev)
}

// Apply applies a typed event. Fatal outcomes are returned as errors after
// the notice is raised; advisory and informational events return nil.
func (e *Engine) Apply(ev protocol.Event) error {
	if err := e.checkCourse(ev); err != nil {
		e.fatal(ev.Command(), err.Error())
		return err
	}

	switch ev := ev.(type) {
	case protocol.Hello:
		if err := e.model.Resync(ev.Selected); err != nil {
			e.fatal(ev.Command(), err.Error())
			return fmt.Errorf("%w: %w", protocol.ErrProtocolViolation, err)
		}
		log.Debug().Int("selected", len(ev.Selected)).Bool("confirmed", e.model.Confirmed()).Msg("reconcile.hello")
	case protocol.Unauthenticated:
		e.fatal(ev.Command(), unauthenticatedText)
		return ErrUnauthenticated
	case protocol.Removed:
		_ = e.model.Deselect(ev.CourseID)
	case protocol.CountUpdate:
		_ = e.model.UpdateCount(ev.CourseID, ev.Selected)
	case protocol.Rejected:
		_ = e.model.Reject(ev.CourseID, ev.Reason)
		log.Debug().Str("course", ev.CourseID).Str("reason", ev.Reason).Msg("reconcile.rejected")
	case protocol.Approved:
		_ = e.model.Select(ev.CourseID)
	case protocol.Stop:
		e.model.SetEnrollmentOpen(false)
	case protocol.Start:
		e.model.SetEnrollmentOpen(true)
	case protocol.Confirmed:
		e.model.SetConfirmed(true)
	case protocol.Unconfirmed:
		e.model.SetConfirmed(false)
	case protocol.ServerError:
		e.notify(SeverityAdvisory, ev.Command(), ev.Message)
	case protocol.Notice:
		e.notify(SeverityInfo, ev.Command(), ev.Message)
	default:
		e.fatal(protocol.CommandUnknown, fmt.Sprintf("unhandled event %T", ev))
		return fmt.Errorf("%w: unhandled event %T", protocol.ErrProtocolViolation, ev)
	}
	return nil
}

// checkCourse rejects per-course events naming a course outside the
// catalog before any state changes.
func (e *Engine) checkCourse(ev protocol.Event) error {
	var id string
	switch ev := ev.(type) {
	case protocol.Removed:
		id = ev.CourseID
	case protocol.CountUpdate:
		id = ev.CourseID
	case protocol.Rejected:
		id = ev.CourseID
	case protocol.Approved:
		id = ev.CourseID
	default:
		return nil
	}
	if e.model.Has(id) {
		return nil
	}
	return fmt.Errorf("%w: %w: %s %q", protocol.ErrProtocolViolation, ErrUnknownCourse, ev.Command(), id)
}

func (e *Engine) fatal(cmd protocol.Command, text string) {
	log.Error().Str("command", cmd.String()).Str("text", text).Msg("reconcile.fatal")
	e.notifier.Notify(Notice{Severity: SeverityFatal, Command: cmd, Text: text})
}

func (e *Engine) notify(sev Severity, cmd protocol.Command, text string) {
	log.Info().Str("command", cmd.String()).Str("severity", sev.String()).Str("text", text).Msg("reconcile.notice")
	e.notifier.Notify(Notice{Severity: sev, Command: cmd, Text: text})
}
