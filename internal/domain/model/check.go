package model

import (
	"slices"
	"strings"
)

// CheckDefinition is one check as resolved from the definitions tree, with
// all cascading defaults applied.
type CheckDefinition struct {
	ShortName  string // Derived from the .env file name.
	Name       string // CHECK_NAME: the context name as it appears on GitHub.
	Repository string // PR_REPO: "owner/repo" whose pull requests the check runs on.
	Branch     string // PR_BRANCH: base branch the check watches.
	CIName     string // CI_NAME: internal name used by the CI system.
}

// Target identifies a repository/branch pair that checks are defined for.
type Target struct {
	Repository string
	Branch     string
}

// Catalog is the flat result of resolving the definitions tree: the ordered
// checks defined for each repository/branch, plus the table translating a
// check's display name to its internal CI name. A catalog is built once per
// refresh cycle and never mutated afterwards; the next cycle replaces it
// wholesale.
type Catalog struct {
	Checks map[Target][]string // Check display names per target, in definition order.
	Names  map[string]string   // Display name -> CI name.
}

// NewCatalog returns an empty catalog ready for Add.
func NewCatalog() *Catalog {
	return &Catalog{
		Checks: make(map[Target][]string),
		Names:  make(map[string]string),
	}
}

// Add records a resolved check definition.
func (c *Catalog) Add(def CheckDefinition) {
	t := Target{Repository: def.Repository, Branch: def.Branch}
	c.Checks[t] = append(c.Checks[t], def.Name)
	c.Names[def.Name] = def.CIName
}

// Targets returns all targets sorted by repository, then branch, so that
// every renderer walks the catalog in the same order.
func (c *Catalog) Targets() []Target {
	targets := make([]Target, 0, len(c.Checks))
	for t := range c.Checks {
		targets = append(targets, t)
	}
	slices.SortFunc(targets, func(a, b Target) int {
		if v := strings.Compare(a.Repository, b.Repository); v != 0 {
			return v
		}
		return strings.Compare(a.Branch, b.Branch)
	})
	return targets
}

// ChecksFor returns the check names for a target, sorted for display.
func (c *Catalog) ChecksFor(t Target) []string {
	checks := slices.Clone(c.Checks[t])
	slices.Sort(checks)
	return checks
}
