// Package upsert decides whether a desired-state item is created, updated or left alone.
package upsert

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/hydrate/internal/model"
)

// Policy resolves a detected difference when no update was forced.
type Policy string

const (
	// PolicyUpdate updates resources whose comparable fields drift.
	PolicyUpdate Policy = "update"
	// PolicySkip leaves existing resources alone unless an update is forced.
	PolicySkip Policy = "skip"
)

// ParsePolicy accepts "update" or "skip"; empty means PolicyUpdate.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyUpdate:
		return PolicyUpdate, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown update policy %q", s)
	}
}

// Options tunes Decide.
type Options struct {
	ForceUpdate bool
	Policy      Policy
	// Ignore lists fields excluded from equality on top of ServerFields.
	Ignore []string
}

// Decide compares desired against existing:
//
//  1. nothing exists: Create
//  2. ForceUpdate: Update
//  3. comparable fields equal: Skip
//  4. otherwise: Update, or Skip under PolicySkip
func Decide(existing *model.ExistingRef, desired map[string]any, opts Options) model.Decision {
	if existing == nil {
		return model.Decision{Action: model.DecisionCreate, Reason: "resource does not exist"}
	}
	if opts.ForceUpdate {
		return model.Decision{Action: model.DecisionUpdate, Reason: "update forced"}
	}

	changed := Differences(existing.Raw, desired, opts.Ignore)
	if existing.Raw != nil && len(changed) == 0 {
		return model.Decision{Action: model.DecisionSkip, Reason: "already up to date"}
	}

	reason := "existing attributes unknown"
	if existing.Raw != nil {
		reason = "changed: " + strings.Join(changed, ", ")
	}
	if opts.Policy == PolicySkip {
		return model.Decision{Action: model.DecisionSkip, Reason: "exists, update not forced (" + reason + ")"}
	}
	return model.Decision{Action: model.DecisionUpdate, Reason: reason}
}
