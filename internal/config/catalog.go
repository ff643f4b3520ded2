package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/danmuck/courseselect/internal/enrollment"
	gotoml "github.com/pelletier/go-toml/v2"
)

// CatalogFile is the on-disk shape of a course catalog.
type CatalogFile struct {
	Courses      []CourseEntry      `toml:"courses"`
	Requirements []RequirementEntry `toml:"requirements"`
	GroupPairs   []GroupPairEntry   `toml:"group_pairs"`
}

type CourseEntry struct {
	ID         string `toml:"id"`
	Title      string `toml:"title"`
	Category   string `toml:"category"`
	Group      string `toml:"group"`
	Instructor string `toml:"instructor"`
	Location   string `toml:"location"`
	// Capacity is optional; omitted means unknown.
	Capacity *int `toml:"capacity"`
	Selected int  `toml:"selected"`
}

type RequirementEntry struct {
	Category string `toml:"category"`
	Required int    `toml:"required"`
}

type GroupPairEntry struct {
	A string `toml:"a"`
	B string `toml:"b"`
}

// LoadCatalog reads and validates a catalog. Unknown keys are rejected so a
// misspelled field cannot silently drop a course attribute.
func LoadCatalog(path string) (enrollment.Catalog, error) {
	var file CatalogFile
	if err := loadToml(path, &file); err != nil {
		return enrollment.Catalog{}, err
	}
	cat := file.Catalog()
	if err := cat.Validate(); err != nil {
		return enrollment.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

func (f CatalogFile) Catalog() enrollment.Catalog {
	cat := enrollment.Catalog{
		Courses:      make([]enrollment.CourseSpec, 0, len(f.Courses)),
		Requirements: make([]enrollment.Requirement, 0, len(f.Requirements)),
		GroupPairs:   make([]enrollment.GroupPair, 0, len(f.GroupPairs)),
	}
	for _, c := range f.Courses {
		capacity := enrollment.CapacityUnknown
		if c.Capacity != nil {
			capacity = *c.Capacity
		}
		cat.Courses = append(cat.Courses, enrollment.CourseSpec{
			ID:            c.ID,
			Title:         c.Title,
			Category:      c.Category,
			Group:         c.Group,
			Instructor:    c.Instructor,
			Location:      c.Location,
			Capacity:      capacity,
			SelectedCount: c.Selected,
		})
	}
	for _, r := range f.Requirements {
		cat.Requirements = append(cat.Requirements, enrollment.Requirement{Category: r.Category, Required: r.Required})
	}
	for _, p := range f.GroupPairs {
		cat.GroupPairs = append(cat.GroupPairs, enrollment.GroupPair{A: p.A, B: p.B})
	}
	return cat
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := gotoml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var strict *gotoml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config parse failed (%s): %s", path, strict.String())
		}
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
