package engine

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alexisbeaulieu97/hydrate/internal/cache"
	"github.com/alexisbeaulieu97/hydrate/internal/family"
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/logger"
	"github.com/alexisbeaulieu97/hydrate/internal/model"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
	"github.com/alexisbeaulieu97/hydrate/internal/upsert"
	"github.com/alexisbeaulieu97/hydrate/pkg/diff"
)

const statusSuccess = "Success"

// Reconciler converges the templates of one family against the remote tenant.
type Reconciler struct {
	family *family.Family
	exec   *ExecutionContext
	cache  *cache.ResourceCache
	log    *logger.Logger
}

// NewReconciler creates a reconciler with its own resource cache.
func NewReconciler(f *family.Family, exec *ExecutionContext) *Reconciler {
	log := exec.Logger.With("family", f.Name)
	return &Reconciler{
		family: f,
		exec:   exec,
		cache:  cache.New(exec.Client, log),
		log:    log,
	}
}

// Reconcile processes items in order. Every item failure becomes a Failed record and
// processing continues. In delete mode unowned or absent resources produce no record.
func (r *Reconciler) Reconcile(items []template.Item) []model.ResultRecord {
	ctx := r.exec.ctx()
	seen := make(map[string]bool, len(items))
	var records []model.ResultRecord

	for _, item := range items {
		rec, ok := r.reconcileItem(ctx, item, seen)
		if !ok {
			continue
		}
		rec.Timestamp = r.exec.now()
		r.log.Record(rec)
		records = append(records, rec)
	}
	return records
}

func (r *Reconciler) reconcileItem(ctx context.Context, item template.Item, seen map[string]bool) (model.ResultRecord, bool) {
	id, rejected := identify(r.family, item, r.exec.Options.NamePrefix, r.exec.marker(), seen)
	if rejected != nil {
		return *rejected, true
	}

	attrs, err := id.attrs.Clone()
	if err != nil {
		return r.failed(id, item, err), true
	}
	attrs[r.family.IdentityField()] = id.name
	id.attrs = attrs

	existing, err := r.lookup(ctx, id)
	if err != nil {
		return r.failed(id, item, err), true
	}

	if r.exec.Options.Mode == model.ModeDelete {
		return r.remove(ctx, id, item, existing)
	}
	return r.upsert(ctx, id, item, existing), true
}

// lookup resolves the existing resource, by secondary key when the template has one.
func (r *Reconciler) lookup(ctx context.Context, id identity) (*model.ExistingRef, error) {
	if key := r.family.SecondaryKey; key != "" {
		if value := id.attrs.String(key); value != "" {
			query := url.Values{}
			query.Set("$filter", graph.EqFilter(key, value))
			page, err := r.exec.Client.ListPage(ctx, id.endpoint, "", query)
			if err != nil {
				return nil, err
			}
			if len(page.Value) == 0 {
				return nil, nil
			}
			obj := page.Value[0]
			ref := model.ExistingRef{Name: r.family.NameOf(obj), Raw: obj}
			ref.ID, _ = obj["id"].(string)
			return &ref, nil
		}
	}

	ref, ok := r.cache.Lookup(ctx, id.endpoint, r.family.IdentityField(), id.name)
	if !ok {
		return nil, nil
	}
	return &ref, nil
}

func (r *Reconciler) remove(ctx context.Context, id identity, item template.Item, existing *model.ExistingRef) (model.ResultRecord, bool) {
	if existing == nil {
		r.log.With("name", id.name).Debug("not present, nothing to delete")
		return model.ResultRecord{}, false
	}
	if !r.family.Marked(existing.Raw, r.exec.marker(), r.exec.Options.NamePrefix) {
		r.log.With("name", id.name).Debug("not created by hydrate, leaving in place")
		return model.ResultRecord{}, false
	}

	rec := r.record(id, item)
	rec.ID = existing.ID
	if r.exec.Options.DryRun {
		rec.Action = model.ActionWouldDelete
		rec.Status = "Would delete"
		return rec, true
	}

	if err := r.exec.Pacer.Wait(ctx); err != nil {
		return r.failed(id, item, err), true
	}
	if err := r.exec.Client.Delete(ctx, id.endpoint, existing.ID); err != nil {
		failed := r.failed(id, item, err)
		failed.ID = existing.ID
		return failed, true
	}
	r.cache.Remove(id.endpoint, id.name)
	rec.Action = model.ActionDeleted
	rec.Status = statusSuccess
	return rec, true
}

func (r *Reconciler) upsert(ctx context.Context, id identity, item template.Item, existing *model.ExistingRef) model.ResultRecord {
	marker := r.exec.marker()
	desired, err := r.family.BuildPayload(id.attrs, family.OpCreate, marker)
	if err != nil {
		return r.failed(id, item, err)
	}

	decision := upsert.Decide(existing, desired, upsert.Options{
		ForceUpdate: r.exec.Options.ForceUpdate,
		Policy:      r.exec.Options.UpdatePolicy,
		Ignore:      r.family.CompareIgnore,
	})
	r.log.WithFields(map[string]any{"name": id.name, "decision": string(decision.Action)}).Debug(decision.Reason)

	rec := r.record(id, item)
	rec.State = desired.String("state")
	if existing != nil {
		rec.ID = existing.ID
	}

	switch decision.Action {
	case model.DecisionSkip:
		rec.Action = model.ActionSkipped
		rec.Status = decision.Reason
		rec.State = remoteState(existing, nil)
		return rec

	case model.DecisionCreate:
		if r.exec.Options.DryRun {
			rec.Action = model.ActionWouldCreate
			rec.Status = "Would create"
			rec.Diff, _ = diff.JSON(map[string]any{}, map[string]any(desired), "remote", "template")
			return rec
		}
		created, err := r.create(ctx, id, desired)
		if err != nil {
			failed := r.failed(id, item, err)
			failed.ID = created
			return failed
		}
		rec.ID = created
		rec.Action = model.ActionCreated
		rec.Status = statusSuccess
		return rec

	default:
		payload, err := r.family.BuildPayload(id.attrs, family.OpUpdate, marker)
		if err != nil {
			return r.failed(id, item, err)
		}
		payload = r.family.UpdateBody(payload, r.exec.Options.ForceUpdate)
		rec.State = remoteState(existing, payload)
		if r.exec.Options.DryRun {
			rec.Action = model.ActionWouldUpdate
			rec.Status = "Would update: " + decision.Reason
			rec.Diff, _ = diff.JSON(comparableSubset(existing.Raw, payload), map[string]any(payload), "remote", "template")
			return rec
		}
		newID, err := r.update(ctx, id, existing, desired, payload)
		if err != nil {
			failed := r.failed(id, item, err)
			failed.ID = rec.ID
			return failed
		}
		rec.ID = newID
		rec.Action = model.ActionUpdated
		rec.Status = statusSuccess
		return rec
	}
}

// create POSTs the payload and runs the family's follow-up requests. The new id is
// returned even when a follow-up fails.
func (r *Reconciler) create(ctx context.Context, id identity, desired template.Attributes) (string, error) {
	if err := r.exec.Pacer.Wait(ctx); err != nil {
		return "", err
	}
	created, err := r.exec.Client.Create(ctx, id.endpoint, desired)
	if err != nil {
		return "", err
	}
	newID, _ := created["id"].(string)
	r.cache.Put(id.endpoint, model.ExistingRef{Name: id.name, ID: newID, Raw: created})

	if r.family.AfterCreate != nil {
		if err := r.family.AfterCreate(ctx, r.exec.Client, id.endpoint, newID, id.attrs); err != nil {
			return newID, fmt.Errorf("created %s but follow-up failed: %w", newID, err)
		}
	}
	return newID, nil
}

func (r *Reconciler) update(ctx context.Context, id identity, existing *model.ExistingRef, desired, payload template.Attributes) (string, error) {
	if r.family.Strategy == family.Replace {
		if err := r.exec.Pacer.Wait(ctx); err != nil {
			return existing.ID, err
		}
		if err := r.exec.Client.Delete(ctx, id.endpoint, existing.ID); err != nil {
			return existing.ID, err
		}
		r.cache.Remove(id.endpoint, id.name)
		return r.create(ctx, id, desired)
	}

	if err := r.exec.Pacer.Wait(ctx); err != nil {
		return existing.ID, err
	}
	if err := r.exec.Client.Update(ctx, id.endpoint, existing.ID, payload); err != nil {
		return existing.ID, err
	}
	merged := make(map[string]any, len(existing.Raw)+len(payload))
	for k, v := range existing.Raw {
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	r.cache.Put(id.endpoint, model.ExistingRef{Name: id.name, ID: existing.ID, Raw: merged})
	return existing.ID, nil
}

func (r *Reconciler) record(id identity, item template.Item) model.ResultRecord {
	return model.ResultRecord{
		Name:     id.name,
		Path:     item.Source,
		Type:     id.typ,
		Platform: r.family.PlatformOf(item.Attrs),
	}
}

func (r *Reconciler) failed(id identity, item template.Item, err error) model.ResultRecord {
	rec := r.record(id, item)
	if rec.Name == "" {
		rec.Name = item.Label()
	}
	rec.Action = model.ActionFailed
	rec.Status = graph.ErrorMessage(err)
	r.log.WithFields(map[string]any{"name": rec.Name, "path": item.Source}).Error(err, "item failed")
	return rec
}

// remoteState is the state a resource is left in when body is written over it, or
// nothing is written at all.
func remoteState(existing *model.ExistingRef, body template.Attributes) string {
	if state := body.String("state"); state != "" {
		return state
	}
	if existing != nil {
		if state, ok := existing.Raw["state"].(string); ok {
			return state
		}
	}
	return ""
}

// comparableSubset picks the keys of desired out of the remote object so previews show
// only what would change.
func comparableSubset(remote map[string]any, desired map[string]any) map[string]any {
	out := make(map[string]any, len(desired))
	for k := range desired {
		if v, ok := remote[k]; ok {
			out[k] = v
		}
	}
	return out
}
