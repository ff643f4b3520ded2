package protocol

import "errors"

var (
	ErrProtocolViolation    = errors.New("protocol: violation")
	ErrUnknownCommand       = errors.New("protocol: unknown command")
	ErrMissingArgument      = errors.New("protocol: missing argument")
	ErrInvalidArgument      = errors.New("protocol: invalid argument")
	ErrUnsupportedByDialect = errors.New("protocol: command unsupported by dialect")
)
