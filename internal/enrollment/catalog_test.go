package enrollment

import (
	"errors"
	"testing"

	"github.com/danmuck/courseselect/internal/testutil/testlog"
)

func TestCatalogValidateAcceptsFixture(t *testing.T) {
	testlog.Start(t)
	if err := testCatalog().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	groups := testCatalog().Groups()
	if len(groups) != 3 || groups[0] != "MW1" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestCatalogValidateRejects(t *testing.T) {
	testlog.Start(t)
	cases := map[string]func(c *Catalog){
		"duplicate id": func(c *Catalog) { c.Courses[1].ID = "1" },
		"missing title": func(c *Catalog) { c.Courses[0].Title = "" },
		"comma in id":   func(c *Catalog) { c.Courses[0].ID = "1,2" },
		"space in id":   func(c *Catalog) { c.Courses[0].ID = "1 2" },
		"bad capacity":  func(c *Catalog) { c.Courses[0].Capacity = -5 },
		"unknown category": func(c *Catalog) {
			c.Courses[0].Category = "Culture"
		},
		"duplicate requirement": func(c *Catalog) {
			c.Requirements = append(c.Requirements, Requirement{Category: "Sport", Required: 2})
		},
		"self pair": func(c *Catalog) {
			c.GroupPairs = []GroupPair{{A: "MW1", B: "MW1"}}
		},
		"double pair": func(c *Catalog) {
			c.GroupPairs = append(c.GroupPairs, GroupPair{A: "MW1", B: "MW2"})
		},
	}
	for name, mutate := range cases {
		cat := testCatalog()
		mutate(&cat)
		if err := cat.Validate(); !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
		if _, err := NewModel(cat); err == nil {
			t.Fatalf("%s: model accepted invalid catalog", name)
		}
	}
}
