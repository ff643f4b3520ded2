package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/intent"
)

var ErrUnknownInput = errors.New("unknown command, type help")

type cmdKind int

const (
	cmdHelp cmdKind = iota
	cmdToggle
	cmdToggleControl
	cmdConfirm
	cmdUnconfirm
	cmdState
	cmdView
	cmdQuit
)

type command struct {
	kind      cmdKind
	courseID  string
	controlID string
	checked   bool
}

const helpText = `commands:
  y <course>              choose a course
  n <course>              drop a course
  tick <control> <bool>   set a course control, e.g. tick12 true
  confirm | unconfirm     confirm or reopen your selections
  state                   show courses and quotas
  view                    show the confirmed selections
  help | quit`

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdHelp}, nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "y", "choose", "n", "drop":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: %s <course>", verb)
		}
		return command{kind: cmdToggle, courseID: args[0], checked: verb == "y" || verb == "choose"}, nil
	case "tick":
		if len(args) != 2 {
			return command{}, fmt.Errorf("usage: tick <control> <true|false>")
		}
		checked, err := intent.ParseChecked(args[1])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdToggleControl, controlID: args[0], checked: checked}, nil
	case "confirm":
		return command{kind: cmdConfirm}, nil
	case "unconfirm":
		return command{kind: cmdUnconfirm}, nil
	case "state", "s":
		return command{kind: cmdState}, nil
	case "view":
		return command{kind: cmdView}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "exit", "q":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("%w: %q", ErrUnknownInput, fields[0])
	}
}

func renderState(w io.Writer, snap enrollment.Snapshot) {
	fmt.Fprintf(w, "connected=%t open=%t confirmed=%t can_confirm=%t can_unconfirm=%t\n",
		snap.Connected, snap.EnrollmentOpen, snap.Confirmed, snap.CanConfirm, snap.CanUnconfirm)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tGROUP\tTAKEN\tSTATUS")
	for _, c := range snap.Courses {
		taken := fmt.Sprintf("%d", c.SelectedCount)
		if c.Capacity != enrollment.CapacityUnknown {
			taken = fmt.Sprintf("%d/%d", c.SelectedCount, c.Capacity)
		}
		status := c.Status
		if c.StatusText != "" && c.StatusText != c.Status {
			status = c.Status + " (" + c.StatusText + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Title, c.Category, c.Group, taken, status)
	}
	_ = tw.Flush()

	for _, q := range snap.Counters {
		fmt.Fprintf(w, "%s: %d/%d\n", q.Category, q.Chosen, q.Required)
	}
}

func renderConfirmedView(w io.Writer, snap enrollment.Snapshot) {
	if !snap.Confirmed {
		fmt.Fprintln(w, "selections are not confirmed")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tCOURSE\tTITLE\tINSTRUCTOR\tLOCATION")
	for _, e := range snap.ConfirmedView {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Group, e.CourseID, e.Title, e.Instructor, e.Location)
	}
	_ = tw.Flush()
}
