package model

// DecisionAction is the upsert verdict for one desired-state item.
type DecisionAction string

const (
	DecisionCreate DecisionAction = "Create"
	DecisionUpdate DecisionAction = "Update"
	DecisionSkip   DecisionAction = "Skip"
)

// Decision is the result of comparing desired state with what exists remotely.
type Decision struct {
	Action DecisionAction
	Reason string
}

// ExistingRef identifies a resource found in the remote tenant during one pass.
// Raw may be nil when only the identifier is known.
type ExistingRef struct {
	Name string
	ID   string
	Raw  map[string]any
}
