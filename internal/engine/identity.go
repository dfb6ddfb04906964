package engine

import (
	"fmt"

	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

// identity is what a template resolves to before any remote call.
type identity struct {
	name     string
	typ      string
	endpoint graph.Endpoint
	attrs    template.Attributes
}

// identify checks the name and discriminator of an item. A non-nil record means the item
// stops here: Failed for missing or duplicate fields, Skipped for unsupported types.
// seen collects the owned names of earlier items in the family.
func identify(f *family.Family, item template.Item, prefix, marker string, seen map[string]bool) (identity, *model.ResultRecord) {
	nameField := f.IdentityField()
	rec := &model.ResultRecord{
		Name:     item.Label(),
		Path:     item.Source,
		Platform: f.PlatformOf(item.Attrs),
	}

	name := item.Attrs.String(nameField)
	if name == "" {
		rec.Action = model.ActionFailed
		rec.Status = "Missing " + nameField
		return identity{}, rec
	}
	name = f.OwnedName(name, prefix, marker)
	rec.Name = name

	if seen[name] {
		rec.Action = model.ActionFailed
		rec.Status = "Duplicate " + nameField
		return identity{}, rec
	}
	seen[name] = true

	id := identity{name: name, attrs: item.Attrs}
	if !f.Discriminated() {
		id.endpoint = f.Endpoints[""]
		return id, nil
	}

	id.typ = item.Attrs.String(f.TypeField)
	rec.Type = id.typ
	if id.typ == "" {
		rec.Action = model.ActionFailed
		rec.Status = "Missing " + f.TypeField
		return identity{}, rec
	}
	ep, ok := f.Endpoint(id.typ)
	if !ok {
		rec.Action = model.ActionSkipped
		rec.Status = fmt.Sprintf("Unsupported type: %s", id.typ)
		return identity{}, rec
	}
	id.endpoint = ep
	return id, nil
}
