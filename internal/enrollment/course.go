package enrollment

// Status is the local state of one course checkbox.
type Status int

const (
	StatusAvailable Status = iota
	// StatusPending is set optimistically by a user action and held until the
	// server answers with Y, N or R.
	StatusPending
	StatusSelected
	StatusRejected
	// StatusFull disables selection because the course is at capacity.
	StatusFull
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusPending:
		return "pending"
	case StatusSelected:
		return "selected"
	case StatusRejected:
		return "rejected"
	case StatusFull:
		return "full"
	default:
		return "unknown"
	}
}

// ReasonFull is the rejection reason the server uses for a course at capacity.
const ReasonFull = "Full"

// CapacityUnknown marks a course whose seat limit was not published.
const CapacityUnknown = -1

// Course is one selectable unit. Category, Group, Capacity and the
// descriptive fields are static for a session; the rest is reconciled.
type Course struct {
	ID         string
	Title      string
	Category   string
	Group      string
	Instructor string
	Location   string
	Capacity   int

	SelectedCount int
	Status        Status
	// Reason is the last rejection reason shown for the course.
	Reason string
}

func (c *Course) atCapacity() bool {
	return c.Capacity != CapacityUnknown && c.SelectedCount >= c.Capacity
}

// Counter tracks one category quota. Chosen is always derived from the
// Selected courses of that category.
type Counter struct {
	Category string
	Required int
	Chosen   int
}

// Satisfied reports whether the quota is met.
func (c Counter) Satisfied() bool {
	return c.Chosen >= c.Required
}
