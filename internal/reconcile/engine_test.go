package reconcile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/protocol"
	"github.com/danmuck/courseselect/internal/testutil/testlog"
)

type noticeLog struct {
	items []Notice
}

func (l *noticeLog) Notify(n Notice) {
	l.items = append(l.items, n)
}

func newEngine(t *testing.T) (*Engine, *enrollment.Model, *noticeLog) {
	t.Helper()
	model, err := enrollment.NewModel(enrollment.Catalog{
		Courses: []enrollment.CourseSpec{
			{ID: "1", Title: "Football", Category: "Sport", Group: "MW1", Capacity: 2},
			{ID: "2", Title: "Chess", Category: "Non-sport", Group: "MW1", Capacity: 10},
			{ID: "3", Title: "Swimming", Category: "Sport", Group: "MW2", Capacity: 1},
			{ID: "4", Title: "Drama", Category: "Non-sport", Group: "MW3", Capacity: 5},
		},
		Requirements: []enrollment.Requirement{
			{Category: "Sport", Required: 1},
			{Category: "Non-sport", Required: 1},
		},
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	notices := &noticeLog{}
	return NewEngine(model, notices), model, notices
}

func dispatchAll(t *testing.T, e *Engine, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := e.Dispatch(line); err != nil {
			t.Fatalf("dispatch %q: %v", line, err)
		}
	}
}

func status(t *testing.T, m *enrollment.Model, id string) enrollment.Status {
	t.Helper()
	c, ok := m.Course(id)
	if !ok {
		t.Fatalf("missing course %q", id)
	}
	return c.Status
}

func TestHelloResynchronizes(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "START", "HI :1,4")
	if !m.Connected() {
		t.Fatalf("expected connected after HI")
	}
	if status(t, m, "1") != enrollment.StatusSelected || status(t, m, "4") != enrollment.StatusSelected {
		t.Fatalf("HI list not applied")
	}
	if !m.CanConfirm() {
		t.Fatalf("expected confirm permitted after HI")
	}
}

func TestHelloEmptyList(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "HI :")
	for _, id := range m.CourseIDs() {
		if status(t, m, id) != enrollment.StatusAvailable {
			t.Fatalf("course %s should be available", id)
		}
	}
}

func TestApprovalIsIdempotent(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "Y 1", "Y 1")
	c, _ := m.Counter("Sport")
	if c.Chosen != 1 {
		t.Fatalf("unexpected chosen: %d", c.Chosen)
	}
}

func TestConfirmGatingThroughEvents(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "START", "Y 1", "Y 2")
	if !m.CanConfirm() {
		t.Fatalf("expected confirm permitted")
	}
	dispatchAll(t, e, "N 2")
	if m.CanConfirm() {
		t.Fatalf("expected confirm forbidden after N")
	}
	dispatchAll(t, e, "Y 4", "STOP")
	if m.CanConfirm() {
		t.Fatalf("STOP forbids confirm")
	}
	for _, id := range m.CourseIDs() {
		if m.Selectable(id) {
			t.Fatalf("STOP disables course %s", id)
		}
	}
	dispatchAll(t, e, "START")
	if !m.CanConfirm() {
		t.Fatalf("START restores confirm permission")
	}
}

func TestRejectionScopedToCourse(t *testing.T) {
	testlog.Start(t)
	e, m, notices := newEngine(t)
	dispatchAll(t, e, "START", "Y 1")
	_ = m.MarkPending("2")
	dispatchAll(t, e, "R 2 :Group conflict")
	c, _ := m.Course("2")
	if c.Status != enrollment.StatusRejected || c.Reason != "Group conflict" {
		t.Fatalf("unexpected course 2: %+v", c)
	}
	if status(t, m, "1") != enrollment.StatusSelected {
		t.Fatalf("rejection leaked to course 1")
	}
	dispatchAll(t, e, "R 3 Full")
	if status(t, m, "3") != enrollment.StatusFull || m.Selectable("3") {
		t.Fatalf("R Full must lock course 3")
	}
	if len(notices.items) != 0 {
		t.Fatalf("rejections are not notices: %+v", notices.items)
	}
}

func TestCountUpdates(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "START", "M 1 2")
	if m.Selectable("1") {
		t.Fatalf("course at capacity must be disabled")
	}
	dispatchAll(t, e, "M 1 1")
	if !m.Selectable("1") {
		t.Fatalf("course below capacity must be selectable")
	}
	c, _ := m.Course("1")
	if c.SelectedCount != 1 {
		t.Fatalf("unexpected count: %d", c.SelectedCount)
	}
}

func TestConfirmationEchoes(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "START", "Y 3", "Y 4", "YC")
	if !m.Confirmed() {
		t.Fatalf("expected confirmed")
	}
	view := m.ConfirmedView()
	if len(view) != 3 || view[1].Title != "Swimming" || view[2].Title != "Drama" || view[0].CourseID != "" {
		t.Fatalf("unexpected view: %+v", view)
	}

	dispatchAll(t, e, "HI 3")
	view = m.ConfirmedView()
	if view[1].Title != "Swimming" || view[2].CourseID != "" {
		t.Fatalf("HI must replay the confirmed view: %+v", view)
	}

	dispatchAll(t, e, "NC")
	if m.Confirmed() || len(m.ConfirmedView()) != 0 {
		t.Fatalf("expected unconfirmed")
	}
}

func TestAdvisoryAndInfoNotices(t *testing.T) {
	testlog.Start(t)
	e, m, notices := newEngine(t)
	before := m.Snapshot()
	dispatchAll(t, e, "E :Course selections are not open", "RC :Cannot confirm choices")
	if !reflect.DeepEqual(before, m.Snapshot()) {
		t.Fatalf("notices must not mutate the model")
	}
	want := []Notice{
		{Severity: SeverityAdvisory, Command: protocol.CommandError, Text: "Course selections are not open"},
		{Severity: SeverityInfo, Command: protocol.CommandNotice, Text: "Cannot confirm choices"},
	}
	if !reflect.DeepEqual(notices.items, want) {
		t.Fatalf("unexpected notices: %+v", notices.items)
	}
}

func TestFatalEventsLeaveModelUnchanged(t *testing.T) {
	testlog.Start(t)
	e, m, notices := newEngine(t)
	dispatchAll(t, e, "START", "Y 1")
	_ = m.MarkPending("2")
	before := m.Snapshot()

	cases := []struct {
		line string
		want error
	}{
		{line: "FAKE u s", want: protocol.ErrUnknownCommand},
		{line: "U", want: ErrUnauthenticated},
		{line: "Y 99", want: ErrUnknownCourse},
		{line: "M 99 1", want: ErrUnknownCourse},
		{line: "M 1 many", want: protocol.ErrInvalidArgument},
		{line: "N", want: protocol.ErrMissingArgument},
		{line: "HI 1,99", want: enrollment.ErrUnknownCourse},
	}
	for _, tc := range cases {
		err := e.Dispatch(tc.line)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.line, tc.want, err)
		}
		if !reflect.DeepEqual(before, m.Snapshot()) {
			t.Fatalf("%q: model mutated", tc.line)
		}
	}
	if len(notices.items) != len(cases) {
		t.Fatalf("expected one notice per fatal line, got %d", len(notices.items))
	}
	for _, n := range notices.items {
		if n.Severity != SeverityFatal {
			t.Fatalf("unexpected severity: %+v", n)
		}
	}
	if notices.items[0].Text != "Invalid command FAKE received from socket. Something is wrong." {
		t.Fatalf("unexpected text: %q", notices.items[0].Text)
	}
}

func TestPendingResolutionOrderIndependent(t *testing.T) {
	testlog.Start(t)
	e, m, _ := newEngine(t)
	dispatchAll(t, e, "START", "Y 1")
	_ = m.MarkPending("1")
	_ = m.MarkPending("2")
	dispatchAll(t, e, "Y 2", "N 1")
	if status(t, m, "1") != enrollment.StatusAvailable || status(t, m, "2") != enrollment.StatusSelected {
		t.Fatalf("unexpected statuses after out-of-order acks")
	}
	sport, _ := m.Counter("Sport")
	nonSport, _ := m.Counter("Non-sport")
	if sport.Chosen != 0 || nonSport.Chosen != 1 {
		t.Fatalf("unexpected counters: %+v %+v", sport, nonSport)
	}
}
