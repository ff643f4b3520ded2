package protocol

import "strings"

// Encode joins command and args with single spaces. No quoting is applied;
// an argument containing a space is only valid as the last one, and then
// EncodeTrailing should be used instead.
func Encode(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	var b strings.Builder
	b.WriteString(command)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	return b.String()
}

// EncodeTrailing is Encode with the last argument marked as a trailing
// parameter, which lets it carry spaces or an empty value.
func EncodeTrailing(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	out := make([]string, len(args))
	copy(out, args)
	out[len(out)-1] = ":" + out[len(out)-1]
	return Encode(command, out...)
}

// String re-encodes m. The last argument is emitted as a trailing parameter
// only when it needs to be.
func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Command
	}
	last := m.Args[len(m.Args)-1]
	if last == "" || strings.Contains(last, " ") || strings.HasPrefix(last, ":") {
		return EncodeTrailing(m.Command, m.Args...)
	}
	return Encode(m.Command, m.Args...)
}
