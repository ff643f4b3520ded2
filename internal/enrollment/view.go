package enrollment

// ConfirmedEntry is the read-only record shown for one group once the user
// has confirmed. An entry with an empty CourseID means nothing is selected
// in that group.
type ConfirmedEntry struct {
	Group      string `json:"group"`
	CourseID   string `json:"course_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Instructor string `json:"instructor"`
	Location   string `json:"location"`
}

// RebuildConfirmedView recomputes the per-group projection from the current
// Selected courses. The view is a cache and never feeds back into the model.
func (m *Model) RebuildConfirmedView() {
	view := make(map[string]ConfirmedEntry, len(m.groups))
	for _, g := range m.groups {
		view[g] = ConfirmedEntry{Group: g}
	}
	for _, id := range m.order {
		c := m.courses[id]
		if c.Status != StatusSelected {
			continue
		}
		view[c.Group] = ConfirmedEntry{
			Group:      c.Group,
			CourseID:   c.ID,
			Title:      c.Title,
			Category:   c.Category,
			Instructor: c.Instructor,
			Location:   c.Location,
		}
	}
	m.confirmedView = view
}

// ConfirmedView returns the projection ordered by group handle. It is empty
// while the user is not confirmed.
func (m *Model) ConfirmedView() []ConfirmedEntry {
	out := make([]ConfirmedEntry, 0, len(m.confirmedView))
	for _, g := range m.groups {
		if entry, ok := m.confirmedView[g]; ok {
			out = append(out, entry)
		}
	}
	return out
}
