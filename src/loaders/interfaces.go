package loaders

import (
	"context"

	"github.com/username/expensetracker/backend/src/models"
)

// SourceRef identifies one record source. Path is used by the CSV loader,
// UserID by the database loader; Kind selects the column shape.
type SourceRef struct {
	Kind   models.RecordKind
	Path   string
	UserID int64
}

// Loader reads a record source into a fresh TransactionSet. An unreadable,
// malformed or empty source yields an empty set with the condition logged;
// callers must treat an empty set as a valid, continuable state.
type Loader interface {
	Load(ctx context.Context, ref SourceRef) models.TransactionSet
}
