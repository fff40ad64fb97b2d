package catalog

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/alisw/ci-overview/internal/domain/model"
)

// Filters are inclusive allow-lists over resolved checks. An empty list means
// no restriction for that category. Categories combine with AND; repeated
// values within one category combine with OR.
type Filters struct {
	Roles        []string `yaml:"roles"`
	Containers   []string `yaml:"containers"`
	Repositories []string `yaml:"repositories"`
	Checks       []string `yaml:"checks"`
}

// matches reports whether value passes one category's allow-list.
func matches(allowed []string, value string) bool {
	return len(allowed) == 0 || slices.Contains(allowed, value)
}

// requiredKeys must be present in every check file after the defaults cascade.
var requiredKeys = []string{"CHECK_NAME", "PR_REPO", "PR_BRANCH", "CI_NAME"}

// Resolve flattens a definitions tree into a catalog. Resolution is
// best-effort per file: a check file that is missing a required key after
// merging is logged and dropped without aborting the pass. The returned error
// is non-nil only when a check explicitly requested by filters could not be
// resolved at all.
func Resolve(root *model.DefNode, filters Filters) (*model.Catalog, error) {
	defs, err := ResolveDefinitions(root, filters)
	if err != nil {
		return nil, err
	}

	cat := model.NewCatalog()
	for _, def := range defs {
		cat.Add(def)
	}

	var missing []string
	for _, name := range filters.Checks {
		if _, ok := cat.Names[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return cat, fmt.Errorf("no check definition resolved for: %s", strings.Join(missing, ", "))
	}
	return cat, nil
}

// ResolveDefinitions walks role/container/check leaves, applying the defaults
// cascade (root, then role, then role+container, then the check's own file,
// later keys winning) and the allow-list filters.
func ResolveDefinitions(root *model.DefNode, filters Filters) ([]model.CheckDefinition, error) {
	if root == nil {
		return nil, fmt.Errorf("definitions tree is empty")
	}

	rootDefaults := levelDefaults(root, "")

	var defs []model.CheckDefinition
	for _, role := range root.Children {
		if role.IsLeaf || !matches(filters.Roles, role.Name) {
			continue
		}
		roleDefaults := levelDefaults(&role, role.Name)

		for _, container := range role.Children {
			if container.IsLeaf || !matches(filters.Containers, container.Name) {
				continue
			}
			containerPath := path.Join(role.Name, container.Name)
			containerDefaults := levelDefaults(&container, containerPath)

			for _, leaf := range container.Children {
				if !leaf.IsLeaf || leaf.Name == DefaultsFile {
					continue
				}
				filePath := path.Join(containerPath, leaf.Name)

				def, err := resolveFile(&leaf, filePath, rootDefaults, roleDefaults, containerDefaults)
				if err != nil {
					slog.Warn("skipping check definition", "file", filePath, "error", err)
					continue
				}
				if !matches(filters.Repositories, def.Repository) || !matches(filters.Checks, def.Name) {
					continue
				}
				defs = append(defs, def)
			}
		}
	}
	return defs, nil
}

// levelDefaults parses the DEFAULTS.env leaf of one directory node, if any.
// A malformed defaults file contributes nothing beyond a warning.
func levelDefaults(node *model.DefNode, nodePath string) map[string]string {
	for _, child := range node.Children {
		if child.IsLeaf && child.Name == DefaultsFile {
			vars, err := parseEnvFile(child.Contents)
			if err != nil {
				slog.Warn("ignoring malformed defaults file",
					"file", path.Join(nodePath, DefaultsFile), "error", err)
				return nil
			}
			return vars
		}
	}
	return nil
}

// resolveFile merges the defaults cascade into one check definition.
func resolveFile(leaf *model.DefNode, filePath string, cascade ...map[string]string) (model.CheckDefinition, error) {
	own, err := parseEnvFile(leaf.Contents)
	if err != nil {
		return model.CheckDefinition{}, err
	}

	merged := make(map[string]string)
	for _, level := range cascade {
		for key, value := range level {
			merged[key] = value
		}
	}
	for key, value := range own {
		merged[key] = value
	}

	for _, key := range requiredKeys {
		if merged[key] == "" {
			return model.CheckDefinition{}, fmt.Errorf("missing required key %s in %s", key, filePath)
		}
	}

	return model.CheckDefinition{
		ShortName:  strings.TrimSuffix(leaf.Name, ".env"),
		Name:       merged["CHECK_NAME"],
		Repository: merged["PR_REPO"],
		Branch:     merged["PR_BRANCH"],
		CIName:     merged["CI_NAME"],
	}, nil
}
