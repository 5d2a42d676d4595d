package audit

import "context"

// NameResolver stamps human-readable names onto records; it is never used for decisions.
type NameResolver interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}
