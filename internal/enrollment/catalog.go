package enrollment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCatalog = errors.New("enrollment: invalid catalog")
	ErrUnknownCourse  = errors.New("enrollment: unknown course")
)

// CourseSpec is the static description of one course.
type CourseSpec struct {
	ID            string `validate:"required,excludesall=0x2C"`
	Title         string `validate:"required"`
	Category      string `validate:"required"`
	Group         string `validate:"required"`
	Instructor    string
	Location      string
	Capacity      int `validate:"gte=-1"`
	SelectedCount int `validate:"gte=0"`
}

// Requirement is the minimum number of selections for one category.
type Requirement struct {
	Category string `validate:"required"`
	Required int    `validate:"gte=0"`
}

// GroupPair declares two groups as mutually exclusive counterparts.
type GroupPair struct {
	A string `validate:"required"`
	B string `validate:"required,nefield=A"`
}

// Catalog is the snapshot a session is built from.
type Catalog struct {
	Courses      []CourseSpec  `validate:"dive"`
	Requirements []Requirement `validate:"dive"`
	GroupPairs   []GroupPair   `validate:"dive"`
}

var validate = validator.New()

// Validate checks field constraints and cross-references.
func (c Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	categories := make(map[string]struct{}, len(c.Requirements))
	for _, req := range c.Requirements {
		if _, dup := categories[req.Category]; dup {
			return fmt.Errorf("%w: duplicate requirement for category %q", ErrInvalidCatalog, req.Category)
		}
		categories[req.Category] = struct{}{}
	}

	ids := make(map[string]struct{}, len(c.Courses))
	for _, course := range c.Courses {
		if strings.ContainsAny(course.ID, " \t\n") {
			return fmt.Errorf("%w: course id %q contains whitespace", ErrInvalidCatalog, course.ID)
		}
		if _, dup := ids[course.ID]; dup {
			return fmt.Errorf("%w: duplicate course id %q", ErrInvalidCatalog, course.ID)
		}
		ids[course.ID] = struct{}{}
		if _, ok := categories[course.Category]; !ok {
			return fmt.Errorf("%w: course %q has category %q without a requirement", ErrInvalidCatalog, course.ID, course.Category)
		}
	}

	if _, err := c.Partners(); err != nil {
		return err
	}
	return nil
}

// Partners returns the symmetric group mapping. A group may have at most one
// counterpart.
func (c Catalog) Partners() (map[string]string, error) {
	out := make(map[string]string, len(c.GroupPairs)*2)
	for _, pair := range c.GroupPairs {
		a := strings.TrimSpace(pair.A)
		b := strings.TrimSpace(pair.B)
		if a == b {
			return nil, fmt.Errorf("%w: group %q paired with itself", ErrInvalidCatalog, a)
		}
		for _, g := range []string{a, b} {
			if _, dup := out[g]; dup {
				return nil, fmt.Errorf("%w: group %q has more than one counterpart", ErrInvalidCatalog, g)
			}
		}
		out[a] = b
		out[b] = a
	}
	return out, nil
}

// Groups lists every group handle referenced by a course, sorted.
func (c Catalog) Groups() []string {
	seen := make(map[string]struct{})
	for _, course := range c.Courses {
		seen[course.Group] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
