package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is one decoded server-to-client command. The concrete types below
// are the complete set; consumers switch over them exhaustively.
type Event interface {
	Command() Command
}

// Hello carries the full list of courses the server holds as selected.
type Hello struct {
	Selected []string
}

type Unauthenticated struct{}

// Removed reports that a course is no longer selected.
type Removed struct {
	CourseID string
}

// CountUpdate reports how many seats of a course are taken.
type CountUpdate struct {
	CourseID string
	Selected int
}

type Rejected struct {
	CourseID string
	Reason   string
}

type Approved struct {
	CourseID string
}

type Stop struct{}

type Start struct{}

type Confirmed struct{}

type Unconfirmed struct{}

// ServerError is a non-fatal error reported by the server.
type ServerError struct {
	Message string
}

// Notice is informational text to show verbatim.
type Notice struct {
	Message string
}

func (Hello) Command() Command           { return CommandHello }
func (Unauthenticated) Command() Command { return CommandUnauthenticated }
func (Removed) Command() Command         { return CommandRemoved }
func (CountUpdate) Command() Command     { return CommandCount }
func (Rejected) Command() Command        { return CommandRejected }
func (Approved) Command() Command        { return CommandApproved }
func (Stop) Command() Command            { return CommandStop }
func (Start) Command() Command           { return CommandStart }
func (Confirmed) Command() Command       { return CommandConfirmed }
func (Unconfirmed) Command() Command     { return CommandUnconfirmed }
func (ServerError) Command() Command     { return CommandError }
func (Notice) Command() Command          { return CommandNotice }

// ParseEvent converts a decoded message into its typed Event. Extra
// arguments are ignored, matching how the server's own parser treats them.
func ParseEvent(msg Message) (Event, error) {
	cmd, ok := LookupCommand(msg.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrProtocolViolation, ErrUnknownCommand, msg.Command)
	}
	switch cmd {
	case CommandHello:
		list, _ := msg.Arg(0)
		return Hello{Selected: splitCourseList(list)}, nil
	case CommandUnauthenticated:
		return Unauthenticated{}, nil
	case CommandRemoved:
		id, err := requireArg(msg, 0, "course id")
		if err != nil {
			return nil, err
		}
		return Removed{CourseID: id}, nil
	case CommandCount:
		id, err := requireArg(msg, 0, "course id")
		if err != nil {
			return nil, err
		}
		raw, err := requireArg(msg, 1, "selected count")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %w: M selected count %q", ErrProtocolViolation, ErrInvalidArgument, raw)
		}
		return CountUpdate{CourseID: id, Selected: n}, nil
	case CommandRejected:
		id, err := requireArg(msg, 0, "course id")
		if err != nil {
			return nil, err
		}
		reason, err := requireArg(msg, 1, "reason")
		if err != nil {
			return nil, err
		}
		return Rejected{CourseID: id, Reason: reason}, nil
	case CommandApproved:
		id, err := requireArg(msg, 0, "course id")
		if err != nil {
			return nil, err
		}
		return Approved{CourseID: id}, nil
	case CommandStop:
		return Stop{}, nil
	case CommandStart:
		return Start{}, nil
	case CommandConfirmed:
		return Confirmed{}, nil
	case CommandUnconfirmed:
		return Unconfirmed{}, nil
	case CommandError:
		text, _ := msg.Arg(0)
		return ServerError{Message: text}, nil
	case CommandNotice:
		text, _ := msg.Arg(0)
		return Notice{Message: text}, nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrProtocolViolation, ErrUnknownCommand, msg.Command)
	}
}

func requireArg(msg Message, i int, name string) (string, error) {
	v, ok := msg.Arg(i)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %w: %s missing %s", ErrProtocolViolation, ErrMissingArgument, msg.Command, name)
	}
	return v, nil
}

// splitCourseList parses the comma-separated id list carried by HI. An
// absent or empty list means no selections.
func splitCourseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
