package enrollment

// CourseView is the per-course data handed to presentation code.
type CourseView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Group         string `json:"group"`
	Instructor    string `json:"instructor"`
	Location      string `json:"location"`
	Capacity      int    `json:"capacity"`
	SelectedCount int    `json:"selected_count"`
	Status        string `json:"status"`
	StatusText    string `json:"status_text"`
	Selectable    bool   `json:"selectable"`
}

// CounterView is one category quota.
type CounterView struct {
	Category string `json:"category"`
	Chosen   int    `json:"chosen"`
	Required int    `json:"required"`
}

// Snapshot is an immutable copy of everything presentation code may read.
type Snapshot struct {
	Courses        []CourseView     `json:"courses"`
	Counters       []CounterView    `json:"counters"`
	EnrollmentOpen bool             `json:"enrollment_open"`
	Confirmed      bool             `json:"confirmed"`
	Connected      bool             `json:"connected"`
	CanConfirm     bool             `json:"can_confirm"`
	CanUnconfirm   bool             `json:"can_unconfirm"`
	ConfirmedView  []ConfirmedEntry `json:"confirmed_view"`
}

// Snapshot copies the model's presentation-facing state.
func (m *Model) Snapshot() Snapshot {
	snap := Snapshot{
		Courses:        make([]CourseView, 0, len(m.order)),
		Counters:       make([]CounterView, 0, len(m.categories)),
		EnrollmentOpen: m.enrollmentOpen,
		Confirmed:      m.confirmed,
		Connected:      m.connected,
		CanConfirm:     m.CanConfirm(),
		CanUnconfirm:   m.CanUnconfirm(),
		ConfirmedView:  m.ConfirmedView(),
	}
	for _, id := range m.order {
		c := m.courses[id]
		snap.Courses = append(snap.Courses, CourseView{
			ID:            c.ID,
			Title:         c.Title,
			Category:      c.Category,
			Group:         c.Group,
			Instructor:    c.Instructor,
			Location:      c.Location,
			Capacity:      c.Capacity,
			SelectedCount: c.SelectedCount,
			Status:        c.Status.String(),
			StatusText:    c.Reason,
			Selectable:    m.Selectable(c.ID),
		})
	}
	for _, cat := range m.categories {
		c := m.counters[cat]
		snap.Counters = append(snap.Counters, CounterView{
			Category: c.Category,
			Chosen:   c.Chosen,
			Required: c.Required,
		})
	}
	return snap
}

// Course finds a course view by id.
func (s Snapshot) Course(id string) (CourseView, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return CourseView{}, false
}
