package enrollment

import (
	"fmt"
)

// Model is the local snapshot of one connection session. It is not safe for
// concurrent use; the session event loop is its only writer and reader.
type Model struct {
	courses    map[string]*Course
	order      []string
	counters   map[string]*Counter
	categories []string
	partners   map[string]string
	groups     []string

	enrollmentOpen bool
	confirmed      bool
	connected      bool

	confirmedView map[string]ConfirmedEntry
}

// NewModel builds a model from a validated catalog. Every course starts
// Available, except those already at capacity which start Full.
func NewModel(cat Catalog) (*Model, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	partners, err := cat.Partners()
	if err != nil {
		return nil, err
	}
	m := &Model{
		courses:       make(map[string]*Course, len(cat.Courses)),
		order:         make([]string, 0, len(cat.Courses)),
		counters:      make(map[string]*Counter, len(cat.Requirements)),
		categories:    make([]string, 0, len(cat.Requirements)),
		partners:      partners,
		groups:        cat.Groups(),
		confirmedView: make(map[string]ConfirmedEntry),
	}
	for _, req := range cat.Requirements {
		m.counters[req.Category] = &Counter{Category: req.Category, Required: req.Required}
		m.categories = append(m.categories, req.Category)
	}
	for _, spec := range cat.Courses {
		c := &Course{
			ID:            spec.ID,
			Title:         spec.Title,
			Category:      spec.Category,
			Group:         spec.Group,
			Instructor:    spec.Instructor,
			Location:      spec.Location,
			Capacity:      spec.Capacity,
			SelectedCount: spec.SelectedCount,
			Status:        StatusAvailable,
		}
		refreshCapacity(c)
		m.courses[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m, nil
}

// Course returns a copy of the course record.
func (m *Model) Course(id string) (Course, bool) {
	c, ok := m.courses[id]
	if !ok {
		return Course{}, false
	}
	return *c, true
}

func (m *Model) Has(id string) bool {
	_, ok := m.courses[id]
	return ok
}

// CourseIDs lists course ids in catalog order.
func (m *Model) CourseIDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Model) EnrollmentOpen() bool { return m.enrollmentOpen }
func (m *Model) Confirmed() bool      { return m.confirmed }
func (m *Model) Connected() bool      { return m.connected }

func (m *Model) Counter(category string) (Counter, bool) {
	c, ok := m.counters[category]
	if !ok {
		return Counter{}, false
	}
	return *c, true
}

// Counters lists category counters in requirement order.
func (m *Model) Counters() []Counter {
	out := make([]Counter, 0, len(m.categories))
	for _, cat := range m.categories {
		out = append(out, *m.counters[cat])
	}
	return out
}

// Selectable reports whether the course control accepts user input.
func (m *Model) Selectable(id string) bool {
	c, ok := m.courses[id]
	if !ok {
		return false
	}
	return m.enrollmentOpen && c.Status != StatusFull
}

// CanConfirm holds iff enrollment is open, the user has not confirmed yet and
// every category quota is met.
func (m *Model) CanConfirm() bool {
	if !m.enrollmentOpen || m.confirmed {
		return false
	}
	for _, c := range m.counters {
		if !c.Satisfied() {
			return false
		}
	}
	return true
}

func (m *Model) CanUnconfirm() bool {
	return m.enrollmentOpen && m.confirmed
}

// Partner returns the counterpart group declared in the catalog.
func (m *Model) Partner(group string) (string, bool) {
	p, ok := m.partners[group]
	return p, ok
}

// SelectedInGroups lists Selected courses, other than exclude, whose group is
// one of groups. Order follows the catalog.
func (m *Model) SelectedInGroups(groups []string, exclude string) []string {
	want := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}
	var out []string
	for _, id := range m.order {
		if id == exclude {
			continue
		}
		c := m.courses[id]
		if c.Status != StatusSelected {
			continue
		}
		if _, ok := want[c.Group]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (m *Model) lookup(id string) (*Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCourse, id)
	}
	return c, nil
}

// MarkPending puts a course into the optimistic in-flight state.
func (m *Model) MarkPending(id string) error {
	c, err := m.lookup(id)
	if err != nil {
		return err
	}
	c.Status = StatusPending
	m.recount()
	return nil
}

// Select applies a server approval. Applying it twice is harmless.
func (m *Model) Select(id string) error {
	c, err := m.lookup(id)
	if err != nil {
		return err
	}
	c.Status = StatusSelected
	c.Reason = ""
	m.recount()
	return nil
}

// Deselect applies a server removal.
func (m *Model) Deselect(id string) error {
	c, err := m.lookup(id)
	if err != nil {
		return err
	}
	c.Status = StatusAvailable
	m.recount()
	return nil
}

// Reject applies a server denial. A "Full" reason also locks the course.
func (m *Model) Reject(id, reason string) error {
	c, err := m.lookup(id)
	if err != nil {
		return err
	}
	c.Reason = reason
	c.Status = StatusRejected
	if reason == ReasonFull {
		c.Status = StatusFull
	}
	m.recount()
	return nil
}

// UpdateCount records the server-reported seat count. Courses that are
// Selected or awaiting an answer keep their status.
func (m *Model) UpdateCount(id string, selected int) error {
	c, err := m.lookup(id)
	if err != nil {
		return err
	}
	c.SelectedCount = selected
	refreshCapacity(c)
	return nil
}

// SetEnrollmentOpen mirrors START and STOP. Opening re-derives which courses
// are locked by capacity.
func (m *Model) SetEnrollmentOpen(open bool) {
	m.enrollmentOpen = open
	if !open {
		return
	}
	for _, id := range m.order {
		refreshCapacity(m.courses[id])
	}
}

// SetConfirmed mirrors YC and NC. Entering the confirmed state rebuilds the
// confirmed view; leaving it clears the view.
func (m *Model) SetConfirmed(confirmed bool) {
	m.confirmed = confirmed
	if confirmed {
		m.RebuildConfirmedView()
		return
	}
	m.confirmedView = make(map[string]ConfirmedEntry)
}

func (m *Model) SetConnected(connected bool) {
	m.connected = connected
}

// Resync replaces every course's dynamic state from the server's list of
// selected ids. Unknown ids abort the resync before anything changes.
func (m *Model) Resync(selected []string) error {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, err := m.lookup(id); err != nil {
			return err
		}
		set[id] = struct{}{}
	}
	for _, id := range m.order {
		c := m.courses[id]
		c.Reason = ""
		if _, ok := set[id]; ok {
			c.Status = StatusSelected
			continue
		}
		c.Status = StatusAvailable
		refreshCapacity(c)
	}
	m.connected = true
	m.recount()
	if m.confirmed {
		m.RebuildConfirmedView()
	}
	return nil
}

// Disconnect tears down per-connection flags. Pending markers stay until
// the next Resync supersedes them.
func (m *Model) Disconnect() {
	m.connected = false
	m.enrollmentOpen = false
}

func (m *Model) recount() {
	for _, c := range m.counters {
		c.Chosen = 0
	}
	for _, id := range m.order {
		c := m.courses[id]
		if c.Status != StatusSelected {
			continue
		}
		if counter, ok := m.counters[c.Category]; ok {
			counter.Chosen++
		}
	}
}

func refreshCapacity(c *Course) {
	switch c.Status {
	case StatusSelected, StatusPending:
		return
	}
	if c.atCapacity() {
		c.Status = StatusFull
		return
	}
	if c.Status == StatusFull {
		c.Status = StatusAvailable
		if c.Reason == ReasonFull {
			c.Reason = ""
		}
	}
}
