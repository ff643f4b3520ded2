package protocol

import (
	"fmt"
	"strings"
)

// Command names a server-to-client command.
type Command int

const (
	CommandUnknown Command = iota
	CommandHello
	CommandUnauthenticated
	CommandRemoved
	CommandCount
	CommandRejected
	CommandApproved
	CommandStop
	CommandStart
	CommandConfirmed
	CommandUnconfirmed
	CommandError
	CommandNotice
)

var inboundNames = map[string]Command{
	"HI":    CommandHello,
	"U":     CommandUnauthenticated,
	"N":     CommandRemoved,
	"M":     CommandCount,
	"R":     CommandRejected,
	"Y":     CommandApproved,
	"STOP":  CommandStop,
	"START": CommandStart,
	"YC":    CommandConfirmed,
	"NC":    CommandUnconfirmed,
	"E":     CommandError,
	"RC":    CommandNotice,
}

// LookupCommand maps a wire name to its Command.
func LookupCommand(name string) (Command, bool) {
	cmd, ok := inboundNames[name]
	return cmd, ok
}

func (c Command) String() string {
	for name, cmd := range inboundNames {
		if cmd == c {
			return name
		}
	}
	return "UNKNOWN"
}

// Client-to-server command names.
const (
	OutHello       = "HELLO"
	OutChoose      = "Y"
	OutUnchoose    = "N"
	OutConfirm     = "YC"
	OutUnconfirm   = "NC"
	OutConfirmBare = "C"
)

// Dialect selects how confirmation is spelled on the wire. One session uses
// exactly one dialect.
type Dialect string

const (
	DialectCurrent Dialect = "current"
	DialectLegacy  Dialect = "legacy"
)

// NormalizeDialect maps an empty or mixed-case value to a known dialect.
func NormalizeDialect(d Dialect) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(string(d)))) {
	case "", DialectCurrent:
		return DialectCurrent, nil
	case DialectLegacy:
		return DialectLegacy, nil
	default:
		return "", fmt.Errorf("protocol: unknown dialect %q", d)
	}
}

// Hello is the greeting that asks the server for the current selection.
func Hello() string {
	return OutHello
}

// Choose requests selecting a course.
func Choose(courseID string) string {
	return Encode(OutChoose, courseID)
}

// Unchoose requests deselecting a course.
func Unchoose(courseID string) string {
	return Encode(OutUnchoose, courseID)
}

// Confirm is the confirm command in the given dialect.
func Confirm(d Dialect) (string, error) {
	switch d {
	case DialectCurrent:
		return OutConfirm, nil
	case DialectLegacy:
		return OutConfirmBare, nil
	default:
		return "", fmt.Errorf("%w: confirm in %q", ErrUnsupportedByDialect, d)
	}
}

// Unconfirm is the unconfirm command. Only the current dialect has one.
func Unconfirm(d Dialect) (string, error) {
	if d != DialectCurrent {
		return "", fmt.Errorf("%w: unconfirm in %q", ErrUnsupportedByDialect, d)
	}
	return OutUnconfirm, nil
}
