package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
)

// maxTreeDepth bounds the definitions tree to role/container/check.
const maxTreeDepth = 3

// Compile-time interface satisfaction check.
var _ driven.DefinitionSource = (*LocalSource)(nil)

// LocalSource reads the check definitions tree from a local directory.
type LocalSource struct {
	dir string
}

// NewLocalSource returns a DefinitionSource rooted at dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// FetchTree walks the directory up to three levels deep and returns it as a
// uniform definition tree. A missing or unreadable root directory is a fatal
// prerequisite error.
func (s *LocalSource) FetchTree(_ context.Context) (*model.DefNode, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("definitions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("definitions path %s is not a directory", s.dir)
	}
	return readDir(s.dir, filepath.Base(s.dir), maxTreeDepth)
}

// readDir builds a DefNode for one directory. Only ".env" files are treated
// as leaves; anything nested deeper than maxTreeDepth is ignored.
func readDir(path, name string, depth int) (*model.DefNode, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions directory %s: %w", path, err)
	}

	node := &model.DefNode{Name: name}
	for _, entry := range entries {
		entryPath := filepath.Join(path, entry.Name())

		if entry.IsDir() {
			if depth <= 1 {
				continue
			}
			child, err := readDir(entryPath, entry.Name(), depth-1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, *child)
			continue
		}

		if !strings.HasSuffix(entry.Name(), ".env") {
			continue
		}
		contents, err := os.ReadFile(entryPath)
		if err != nil {
			return nil, fmt.Errorf("reading definitions file %s: %w", entryPath, err)
		}
		node.Children = append(node.Children, model.DefNode{
			Name:     entry.Name(),
			IsLeaf:   true,
			Contents: string(contents),
		})
	}
	return node, nil
}
