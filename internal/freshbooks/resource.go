package freshbooks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Tiliavir/freshtrack/internal/record"
)

// Entity is a domain type backed by a record.
type Entity interface {
	Rec() *record.Record
}

// Resource provides the remote CRUD calls of one record type. Method names
// are "<kind>.get", "<kind>.list" and so on.
type Resource[T Entity] struct {
	api     Caller
	kind    string
	idField string
	schema  *record.Schema
	wrap    func(*record.Record) T
}

func newResource[T Entity](api Caller, kind, idField string, schema *record.Schema, wrap func(*record.Record) T) *Resource[T] {
	return &Resource[T]{api: api, kind: kind, idField: idField, schema: schema, wrap: wrap}
}

// New returns an empty, unsaved entity.
func (r *Resource[T]) New() T {
	return r.wrap(record.New(r.schema))
}

func (r *Resource[T]) call(ctx context.Context, action string, params Params) (*Response, error) {
	method := r.kind + "." + action
	resp, err := r.api.CallAPI(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, &RemoteError{Method: method, Message: resp.Error}
	}
	return resp, nil
}

// Get fetches the entity with the given id.
func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T
	resp, err := r.call(ctx, "get", Params{r.idField: id})
	if err != nil {
		return zero, err
	}
	if len(resp.Elements) == 0 {
		return zero, fmt.Errorf("%s %d: %w", r.kind, id, ErrNotFound)
	}
	rec, err := record.FromXML(resp.Elements[0], r.schema)
	if err != nil {
		return zero, fmt.Errorf("%s.get: %w", r.kind, err)
	}
	return r.wrap(rec), nil
}

// List fetches the entities matching filter. A failed call returns an error;
// no matches is an empty, non-nil slice.
func (r *Resource[T]) List(ctx context.Context, filter Params) ([]T, error) {
	resp, err := r.call(ctx, "list", filter)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(resp.Elements) == 0 {
		return items, nil
	}
	name := r.schema.ElemName()
	for _, el := range resp.Elements[0].Children {
		if el.Name() != name {
			continue
		}
		rec, err := record.FromXML(el, r.schema)
		if err != nil {
			return nil, fmt.Errorf("%s.list: %w", r.kind, err)
		}
		items = append(items, r.wrap(rec))
	}
	return items, nil
}

// Create stores e remotely and assigns the returned id to it. On failure e
// is left unchanged.
func (r *Resource[T]) Create(ctx context.Context, e T) (int, error) {
	resp, err := r.call(ctx, "create", Params{r.kind: e.Rec()})
	if err != nil {
		return 0, err
	}
	if len(resp.Elements) == 0 {
		return 0, fmt.Errorf("%s.create: response carries no id", r.kind)
	}
	id, err := strconv.Atoi(strings.TrimSpace(resp.Elements[0].Text))
	if err != nil {
		return 0, fmt.Errorf("%s.create: invalid id %q", r.kind, resp.Elements[0].Text)
	}
	if err := e.Rec().Set(r.idField, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update sends the current state of e.
func (r *Resource[T]) Update(ctx context.Context, e T) error {
	_, err := r.call(ctx, "update", Params{r.kind: e.Rec()})
	return err
}

// Delete removes the entity with the given id.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	_, err := r.call(ctx, "delete", Params{r.idField: id})
	return err
}

// DeleteEntity removes e using its own id.
func (r *Resource[T]) DeleteEntity(ctx context.Context, e T) error {
	return r.Delete(ctx, e.Rec().Int(r.idField))
}

// FindByName lists all entities and returns the first whose name equals
// name.
func (r *Resource[T]) FindByName(ctx context.Context, name string) (T, error) {
	var zero T
	items, err := r.List(ctx, nil)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if item.Rec().String("name") == name {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %q: %w", r.kind, name, ErrNotFound)
}
