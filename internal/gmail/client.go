package gmail

import "context"

// LabelClient is the narrow label surface the engine's session needs.
type LabelClient interface {
	ListLabels(ctx context.Context) (map[string]LabelID, map[LabelID]string, error)
	EnsureLabel(ctx context.Context, name string) (LabelID, error)
}
