package reconcile

import "github.com/danmuck/courseselect/internal/protocol"

// Severity classifies a user-facing notice.
type Severity int

const (
	// SeverityInfo is verbatim server text (RC).
	SeverityInfo Severity = iota
	// SeverityAdvisory is a non-blocking server error (E). Local state may no
	// longer match the server.
	SeverityAdvisory
	// SeverityFatal blocks the session: invalid authentication or a protocol
	// violation. Only the server can recover it.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityAdvisory:
		return "advisory"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Notice is text to surface to the user.
type Notice struct {
	Severity Severity
	Command  protocol.Command
	Text     string
}

// Notifier receives notices produced while reconciling.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

const unauthenticatedText = "Your session is broken or has expired. You are unauthenticated and the server will reject your commands."
