package intent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/protocol"
	"github.com/rs/zerolog/log"
)

// ControlPrefix is the addressing scheme for course controls: "tick<id>".
const ControlPrefix = "tick"

var (
	ErrBadControlID    = errors.New("intent: control id is not in the correct format")
	ErrBadCheckedValue = errors.New("intent: checked value is invalid")
	ErrUnknownCourse   = errors.New("intent: unknown course")
	ErrSend            = errors.New("intent: send failed")
	ErrNotSelectable   = errors.New("intent: course is not selectable")
	ErrCannotConfirm   = errors.New("intent: selection cannot be confirmed")
	ErrCannotUnconfirm = errors.New("intent: selection cannot be unconfirmed")
)

// Sender delivers one outbound protocol line. Delivery is fire-and-forget;
// the server's reply arrives later as an inbound event.
type Sender interface {
	Send(line string) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(line string) error

func (f SenderFunc) Send(line string) error {
	return f(line)
}

// Controller turns user actions into optimistic model transitions and
// outbound commands.
type Controller struct {
	model   *enrollment.Model
	sender  Sender
	dialect protocol.Dialect
}

func NewController(model *enrollment.Model, sender Sender, dialect protocol.Dialect) (*Controller, error) {
	d, err := protocol.NormalizeDialect(dialect)
	if err != nil {
		return nil, err
	}
	return &Controller{model: model, sender: sender, dialect: d}, nil
}

// ParseControlID extracts the course id from a control identifier.
func ParseControlID(controlID string) (string, error) {
	if !strings.HasPrefix(controlID, ControlPrefix) || len(controlID) == len(ControlPrefix) {
		return "", fmt.Errorf("%w: %q", ErrBadControlID, controlID)
	}
	return controlID[len(ControlPrefix):], nil
}

// ControlID builds the control identifier for a course.
func ControlID(courseID string) string {
	return ControlPrefix + courseID
}

// ParseChecked accepts exactly "true" or "false".
func ParseChecked(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrBadCheckedValue, raw)
	}
}

// ToggleControl is Toggle addressed by control identifier.
func (c *Controller) ToggleControl(controlID string, checked bool) error {
	courseID, err := ParseControlID(controlID)
	if err != nil {
		return err
	}
	return c.Toggle(courseID, checked)
}

// Toggle requests selecting or deselecting a course. Courses that are Full,
// or any course while enrollment is closed, are refused without sending.
// Otherwise the course is marked Pending before anything is sent. Selecting first deselects every other
// Selected course in the target's effective groups, all without waiting for
// replies.
func (c *Controller) Toggle(courseID string, checked bool) error {
	target, ok := c.model.Course(courseID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCourse, courseID)
	}
	if !c.model.Selectable(courseID) {
		log.Debug().Str("course", courseID).Stringer("status", target.Status).Bool("open", c.model.EnrollmentOpen()).Msg("intent.toggle refused")
		return fmt.Errorf("%w: %q", ErrNotSelectable, courseID)
	}

	_ = c.model.MarkPending(courseID)

	var lines []string
	if checked {
		groups := c.EffectiveGroups(target.Group)
		for _, other := range c.model.SelectedInGroups(groups, courseID) {
			_ = c.model.MarkPending(other)
			lines = append(lines, protocol.Unchoose(other))
		}
		lines = append(lines, protocol.Choose(courseID))
	} else {
		lines = append(lines, protocol.Unchoose(courseID))
	}

	log.Debug().Str("course", courseID).Bool("checked", checked).Int("commands", len(lines)).Msg("intent.toggle")
	return c.sendAll(lines)
}

// EffectiveGroups is the group plus its declared counterpart, if any.
func (c *Controller) EffectiveGroups(group string) []string {
	groups := []string{group}
	if partner, ok := c.model.Partner(group); ok {
		groups = append(groups, partner)
	}
	return groups
}

// Confirm sends the confirm command once enrollment is open, nothing is
// confirmed yet and every quota is met. The model changes only when the
// server echoes YC.
func (c *Controller) Confirm() error {
	line, err := protocol.Confirm(c.dialect)
	if err != nil {
		return err
	}
	if !c.model.CanConfirm() {
		return ErrCannotConfirm
	}
	return c.sendAll([]string{line})
}

// Unconfirm sends the unconfirm command while enrollment is open and the
// selection is confirmed. The model changes only when the server echoes NC.
func (c *Controller) Unconfirm() error {
	line, err := protocol.Unconfirm(c.dialect)
	if err != nil {
		return err
	}
	if !c.model.CanUnconfirm() {
		return ErrCannotUnconfirm
	}
	return c.sendAll([]string{line})
}

func (c *Controller) sendAll(lines []string) error {
	for _, line := range lines {
		if err := c.sender.Send(line); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrSend, line, err)
		}
	}
	return nil
}
