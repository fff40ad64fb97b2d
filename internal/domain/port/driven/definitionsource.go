package driven

import (
	"context"

	"github.com/alisw/ci-overview/internal/domain/model"
)

// DefinitionSource produces the root of the check definitions tree. The local
// directory walker and the remote repository-listing fetch both implement it,
// so catalog resolution is identical regardless of where the tree came from.
type DefinitionSource interface {
	FetchTree(ctx context.Context) (*model.DefNode, error)
}
