package models

// SelectionKind is the state of the list selection.
type SelectionKind string

const (
	NoSelection         SelectionKind = "none"
	PlaceholderSelected SelectionKind = "placeholder"
	ExistingSelected    SelectionKind = "existing"
)

const (
	PrimaryCreate = "create"
	PrimaryUpdate = "update"
)

// ActionState is what the selection implies for the dialog's actions.
type ActionState struct {
	Kind           SelectionKind `json:"kind"`
	Entry          *Distribution `json:"entry,omitempty"`
	PrimaryLabel   string        `json:"primary_label,omitempty"`
	PrimaryEnabled bool          `json:"primary_enabled"`
	DeleteEnabled  bool          `json:"delete_enabled"`
}

// StateFor evaluates the action state for the selected row of cache.
// A nil row means nothing is selected.
func StateFor(cache *ListCache, row *int) ActionState {
	if row == nil {
		return ActionState{Kind: NoSelection}
	}
	entry := cache.Lookup(*row)
	if entry == nil {
		if cache.IsPlaceholderRow(*row) {
			return ActionState{
				Kind:           PlaceholderSelected,
				PrimaryLabel:   PrimaryCreate,
				PrimaryEnabled: true,
			}
		}
		return ActionState{Kind: NoSelection}
	}
	return ActionState{
		Kind:           ExistingSelected,
		Entry:          entry,
		PrimaryLabel:   PrimaryUpdate,
		PrimaryEnabled: entry.Deployed,
		DeleteEnabled:  entry.Deletable(),
	}
}
