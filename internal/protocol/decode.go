package protocol

import "strings"

// Message is one decoded protocol line.
type Message struct {
	Command string
	Args    []string
}

// Arg returns the i-th positional argument, if present.
func (m Message) Arg(i int) (string, bool) {
	if i < 0 || i >= len(m.Args) {
		return "", false
	}
	return m.Args[i], true
}

// Decode splits line into a command and its arguments.
//
// Tokens are separated by single spaces. The first token that starts with a
// colon begins the trailing parameter: the colon is dropped and that token is
// joined with every token after it, so the trailing parameter is always the
// last argument and may contain spaces. Decode never fails; validating the
// command is left to ParseEvent.
func Decode(line string) Message {
	parts := strings.Split(line, " ")
	for i, part := range parts {
		if !strings.HasPrefix(part, ":") {
			continue
		}
		if i == len(parts)-1 {
			parts[i] = part[1:]
			break
		}
		parts[i] = part[1:] + " " + strings.Join(parts[i+1:], " ")
		parts = parts[:i+1]
		break
	}
	msg := Message{Command: parts[0], Args: []string{}}
	if len(parts) > 1 {
		msg.Args = parts[1:]
	}
	return msg
}
