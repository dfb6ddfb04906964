// Package family describes each kind of tenant resource hydrate reconciles: where it
// lives remotely, how templates identify it and the fixups applied before a write.
package family

import (
	"context"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

// Operation tells Prepare which request body to shape.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
)

// String implements fmt.Stringer.
func (o Operation) String() string {
	if o == OpUpdate {
		return "update"
	}
	return "create"
}

// UpdateStrategy selects how an existing resource is brought to the desired state.
type UpdateStrategy int

const (
	// Patch sends the update-shaped body with PATCH.
	Patch UpdateStrategy = iota
	// Replace deletes the resource and creates it again.
	Replace
)

// DefaultNameField is the identity attribute of most families.
const DefaultNameField = "displayName"

// AfterCreateFunc runs follow-up requests against a freshly created resource.
// tpl is the template as authored, before any field was stripped.
type AfterCreateFunc func(ctx context.Context, client graph.Client, ep graph.Endpoint, id string, tpl template.Attributes) error

// Family is the static description of one resource family.
type Family struct {
	// Name is the stable key used in settings and on the command line.
	Name string
	// Category labels result records and report sections.
	Category string
	// TemplateDir is the sub-directory of the template root holding this family.
	TemplateDir string
	NameField   string
	// TypeField selects an endpoint from Endpoints. Empty means the family has a single
	// endpoint stored under the "" key.
	TypeField string
	Endpoints map[string]graph.Endpoint

	// ReadOnly fields are stripped from every request body.
	ReadOnly []string
	// CompareIgnore fields are excluded from the upsert equality check.
	CompareIgnore []string
	// CreateOnly fields are written on create and dropped from unforced updates, so
	// changes made in the tenant after creation survive a rerun.
	CreateOnly []string
	// ProvenanceField receives the ownership marker. Empty means ownership is read from
	// the resource name.
	ProvenanceField string
	// SecondaryKey, when set on a template, is matched with a filtered query instead of
	// the name index.
	SecondaryKey string
	Strategy     UpdateStrategy

	Prepare     func(payload template.Attributes, op Operation)
	AfterCreate AfterCreateFunc
	Platform    func(attrs template.Attributes) string
}

// Discriminated reports whether templates choose their endpoint through TypeField.
func (f *Family) Discriminated() bool {
	return f.TypeField != ""
}

// Endpoint returns the endpoint for a discriminator value, matched case-insensitively.
func (f *Family) Endpoint(typeValue string) (graph.Endpoint, bool) {
	if ep, ok := f.Endpoints[typeValue]; ok {
		return ep, true
	}
	for key, ep := range f.Endpoints {
		if strings.EqualFold(key, typeValue) {
			return ep, true
		}
	}
	return graph.Endpoint{}, false
}

// Types lists the accepted discriminator values, sorted.
func (f *Family) Types() []string {
	types := make([]string, 0, len(f.Endpoints))
	for key := range f.Endpoints {
		if key != "" {
			types = append(types, key)
		}
	}
	sort.Strings(types)
	return types
}

// BuildPayload shapes a request body from a cloned template: read-only fields are
// removed, Prepare runs and the marker is stamped.
func (f *Family) BuildPayload(attrs template.Attributes, op Operation, marker string) (template.Attributes, error) {
	payload, err := attrs.Clone()
	if err != nil {
		return nil, err
	}
	payload.Strip(f.ReadOnly...)
	if f.Prepare != nil {
		f.Prepare(payload, op)
	}
	f.Stamp(payload, marker)
	return payload, nil
}

// Stamp appends marker to the provenance field unless it is already present.
func (f *Family) Stamp(payload template.Attributes, marker string) {
	if f.ProvenanceField == "" || marker == "" {
		return
	}
	current := payload.String(f.ProvenanceField)
	switch {
	case current == "":
		payload[f.ProvenanceField] = marker
	case strings.Contains(current, marker):
		payload[f.ProvenanceField] = current
	default:
		payload[f.ProvenanceField] = current + " " + marker
	}
}

// OwnedName is the remote name hydrate gives a template. The configured prefix is
// prepended once. Families without a provenance field carry ownership in the name, so
// without a prefix they get " - <marker>" appended once.
func (f *Family) OwnedName(name, prefix, marker string) string {
	if prefix != "" {
		if strings.HasPrefix(name, prefix) {
			return name
		}
		return prefix + name
	}
	if f.ProvenanceField != "" || marker == "" || strings.Contains(name, marker) {
		return name
	}
	return name + " - " + marker
}

// UpdateBody trims an update payload. Unless forced, CreateOnly fields are left as the
// tenant has them.
func (f *Family) UpdateBody(payload template.Attributes, forced bool) template.Attributes {
	if !forced {
		payload.Strip(f.CreateOnly...)
	}
	return payload
}

// Marked reports whether an existing resource was created by hydrate and may be deleted.
// Families without a provenance field are owned through their name: it must start with
// namePrefix, or contain marker when no prefix is configured.
func (f *Family) Marked(raw map[string]any, marker, namePrefix string) bool {
	if raw == nil {
		return false
	}
	if f.ProvenanceField == "" {
		name, _ := raw[f.nameField()].(string)
		if namePrefix != "" {
			return strings.HasPrefix(name, namePrefix)
		}
		return marker != "" && strings.Contains(name, marker)
	}
	if marker == "" {
		return false
	}
	value, _ := raw[f.ProvenanceField].(string)
	return strings.Contains(value, marker)
}

// PlatformOf returns the platform label for a template, or "".
func (f *Family) PlatformOf(attrs template.Attributes) string {
	if f.Platform == nil {
		return ""
	}
	return f.Platform(attrs)
}

// NameOf returns the identity of a template or listed object.
func (f *Family) NameOf(attrs map[string]any) string {
	return template.Attributes(attrs).String(f.nameField())
}

// IdentityField is the attribute holding the display name.
func (f *Family) IdentityField() string {
	return f.nameField()
}

func (f *Family) nameField() string {
	if f.NameField == "" {
		return DefaultNameField
	}
	return f.NameField
}

// platformByType builds a Platform func from a discriminator→label table.
func platformByType(field string, labels map[string]string) func(template.Attributes) string {
	return func(attrs template.Attributes) string {
		value := attrs.String(field)
		for key, label := range labels {
			if strings.EqualFold(key, value) {
				return label
			}
		}
		return ""
	}
}

// commonReadOnly are server-managed on every collection.
var commonReadOnly = []string{
	"id",
	"createdDateTime",
	"lastModifiedDateTime",
	"modifiedDateTime",
	"version",
	"@odata.context",
	"@odata.id",
	"@odata.etag",
}

func readOnly(extra ...string) []string {
	return append(append([]string{}, commonReadOnly...), extra...)
}
