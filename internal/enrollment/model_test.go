package enrollment

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/danmuck/courseselect/internal/testutil/testlog"
)

func testCatalog() Catalog {
	return Catalog{
		Courses: []CourseSpec{
			{ID: "1", Title: "Football", Category: "Sport", Group: "MW1", Instructor: "Ng", Location: "Field", Capacity: 2},
			{ID: "2", Title: "Chess", Category: "Non-sport", Group: "MW1", Instructor: "Ko", Location: "B12", Capacity: 10},
			{ID: "3", Title: "Swimming", Category: "Sport", Group: "MW2", Instructor: "Li", Location: "Pool", Capacity: 1, SelectedCount: 1},
			{ID: "4", Title: "Drama", Category: "Non-sport", Group: "MW3", Instructor: "Oh", Location: "Hall", Capacity: CapacityUnknown},
		},
		Requirements: []Requirement{
			{Category: "Sport", Required: 1},
			{Category: "Non-sport", Required: 1},
		},
		GroupPairs: []GroupPair{{A: "MW2", B: "MW3"}},
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(testCatalog())
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func mustStatus(t *testing.T, m *Model, id string, want Status) {
	t.Helper()
	c, ok := m.Course(id)
	if !ok {
		t.Fatalf("missing course %q", id)
	}
	if c.Status != want {
		t.Fatalf("course %q: status=%s want=%s", id, c.Status, want)
	}
}

func TestNewModelInitialStatuses(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	mustStatus(t, m, "1", StatusAvailable)
	mustStatus(t, m, "3", StatusFull)
	mustStatus(t, m, "4", StatusAvailable)
	if m.EnrollmentOpen() || m.Confirmed() || m.Connected() {
		t.Fatalf("unexpected initial flags")
	}
	if m.Selectable("1") {
		t.Fatalf("closed enrollment must not be selectable")
	}
	if got := m.CourseIDs(); len(got) != 4 || got[0] != "1" || got[3] != "4" {
		t.Fatalf("unexpected course order: %+v", got)
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	if err := m.Select("1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := m.Select("1"); err != nil {
		t.Fatalf("select again: %v", err)
	}
	c, _ := m.Counter("Sport")
	if c.Chosen != 1 {
		t.Fatalf("unexpected sport chosen: %d", c.Chosen)
	}
}

func TestCounterInvariantUnderRandomEvents(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetEnrollmentOpen(true)
	rng := rand.New(rand.NewSource(7))
	ids := m.CourseIDs()
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		var err error
		switch rng.Intn(5) {
		case 0:
			err = m.Select(id)
		case 1:
			err = m.Deselect(id)
		case 2:
			err = m.Reject(id, "Group conflict")
		case 3:
			err = m.Reject(id, ReasonFull)
		case 4:
			err = m.MarkPending(id)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		want := map[string]int{}
		for _, cid := range ids {
			c, _ := m.Course(cid)
			if c.Status == StatusSelected {
				want[c.Category]++
			}
		}
		for _, counter := range m.Counters() {
			if counter.Chosen != want[counter.Category] {
				t.Fatalf("step %d: %s chosen=%d want=%d", i, counter.Category, counter.Chosen, want[counter.Category])
			}
		}
	}
}

func TestConfirmGating(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetEnrollmentOpen(true)
	if m.CanConfirm() {
		t.Fatalf("quotas unmet")
	}
	_ = m.Select("1")
	if m.CanConfirm() {
		t.Fatalf("non-sport quota unmet")
	}
	_ = m.Select("2")
	if !m.CanConfirm() {
		t.Fatalf("expected confirm permitted")
	}
	_ = m.Deselect("2")
	if m.CanConfirm() {
		t.Fatalf("expected confirm forbidden after removal")
	}
	_ = m.Select("2")
	m.SetConfirmed(true)
	if m.CanConfirm() {
		t.Fatalf("already confirmed")
	}
	if !m.CanUnconfirm() {
		t.Fatalf("expected unconfirm permitted")
	}
	m.SetEnrollmentOpen(false)
	if m.CanUnconfirm() {
		t.Fatalf("closed enrollment must not allow unconfirm")
	}
}

func TestUpdateCountLocksAndUnlocks(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetEnrollmentOpen(true)
	if err := m.UpdateCount("1", 2); err != nil {
		t.Fatalf("update count: %v", err)
	}
	mustStatus(t, m, "1", StatusFull)
	if m.Selectable("1") {
		t.Fatalf("full course must not be selectable")
	}
	_ = m.UpdateCount("1", 1)
	mustStatus(t, m, "1", StatusAvailable)
	if !m.Selectable("1") {
		t.Fatalf("expected course selectable again")
	}

	_ = m.Select("2")
	_ = m.UpdateCount("2", 10)
	mustStatus(t, m, "2", StatusSelected)

	_ = m.MarkPending("4")
	_ = m.UpdateCount("4", 1000)
	mustStatus(t, m, "4", StatusPending)

	if err := m.UpdateCount("99", 1); !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
}

func TestUpdateCountLeavesPendingUntilAnswered(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetEnrollmentOpen(true)
	_ = m.MarkPending("1")
	if err := m.UpdateCount("1", 2); err != nil {
		t.Fatalf("update count: %v", err)
	}
	mustStatus(t, m, "1", StatusPending)
	c, _ := m.Course("1")
	if c.SelectedCount != 2 || c.Reason != "" {
		t.Fatalf("count must still be recorded: %+v", c)
	}

	_ = m.Deselect("1")
	mustStatus(t, m, "1", StatusAvailable)
	_ = m.UpdateCount("1", 2)
	mustStatus(t, m, "1", StatusFull)
}

func TestRejectFullLocksCourse(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetEnrollmentOpen(true)
	_ = m.MarkPending("2")
	_ = m.Reject("2", ReasonFull)
	c, _ := m.Course("2")
	if c.Status != StatusFull || c.Reason != ReasonFull {
		t.Fatalf("unexpected course: %+v", c)
	}
	_ = m.Reject("1", "Group conflict")
	mustStatus(t, m, "1", StatusRejected)
	if !m.Selectable("1") {
		t.Fatalf("rejected course stays selectable")
	}
	_ = m.Select("1")
	c, _ = m.Course("1")
	if c.Reason != "" {
		t.Fatalf("approval must clear reason, got %q", c.Reason)
	}
}

func TestStartRecomputesCapacityLocks(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	_ = m.Select("3")
	m.SetEnrollmentOpen(true)
	mustStatus(t, m, "3", StatusSelected)
	if !m.Selectable("3") {
		t.Fatalf("selected course at capacity stays selectable")
	}
	_ = m.Deselect("3")
	m.SetEnrollmentOpen(true)
	mustStatus(t, m, "3", StatusFull)
}

func TestResyncOverridesPendingGuesses(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	_ = m.MarkPending("1")
	_ = m.Select("2")
	_ = m.Reject("4", "Group conflict")
	m.Disconnect()

	if err := m.Resync([]string{"1", "4"}); err != nil {
		t.Fatalf("resync: %v", err)
	}
	mustStatus(t, m, "1", StatusSelected)
	mustStatus(t, m, "2", StatusAvailable)
	mustStatus(t, m, "3", StatusFull)
	mustStatus(t, m, "4", StatusSelected)
	c, _ := m.Course("4")
	if c.Reason != "" {
		t.Fatalf("resync must clear reasons")
	}
	if !m.Connected() {
		t.Fatalf("resync marks the session connected")
	}
	sport, _ := m.Counter("Sport")
	nonSport, _ := m.Counter("Non-sport")
	if sport.Chosen != 1 || nonSport.Chosen != 1 {
		t.Fatalf("unexpected counters: %+v %+v", sport, nonSport)
	}
}

func TestResyncUnknownCourseChangesNothing(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	_ = m.MarkPending("1")
	before := m.Snapshot()
	if err := m.Resync([]string{"2", "404"}); !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
	after := m.Snapshot()
	mustStatus(t, m, "1", StatusPending)
	mustStatus(t, m, "2", StatusAvailable)
	if before.Connected != after.Connected {
		t.Fatalf("connected flag changed")
	}
}

func TestDisconnectClosesEnrollment(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	m.SetConnected(true)
	m.SetEnrollmentOpen(true)
	_ = m.MarkPending("1")
	m.Disconnect()
	if m.Connected() || m.EnrollmentOpen() {
		t.Fatalf("disconnect must clear connection flags")
	}
	mustStatus(t, m, "1", StatusPending)
}

func TestSelectedInGroups(t *testing.T) {
	testlog.Start(t)
	m := newTestModel(t)
	_ = m.Select("1")
	_ = m.Select("2")
	_ = m.Select("4")
	got := m.SelectedInGroups([]string{"MW1"}, "1")
	if len(got) != 1 || got[0] != "2" {
		t.Fatalf("unexpected MW1 selection: %+v", got)
	}
	partner, ok := m.Partner("MW3")
	if !ok || partner != "MW2" {
		t.Fatalf("unexpected partner: %q %v", partner, ok)
	}
	got = m.SelectedInGroups([]string{"MW2", partner}, "3")
	if len(got) != 1 || got[0] != "4" {
		t.Fatalf("unexpected paired selection: %+v", got)
	}
}
