// Package docstore is the document side of the dual store: JSON documents
// grouped in collections, with single-document transactions and batched
// commits.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict means a transaction kept losing its optimistic lock.
	ErrConflict = errors.New("document changed concurrently")
)

// Filter matches documents whose top-level Field equals Value.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	// Limit <= 0 means no limit.
	Limit int
}

// TxFunc receives the current document (nil when absent) and returns the
// document to write, or nil to leave it untouched. It may run more than once.
type TxFunc func(current json.RawMessage) (next any, err error)

type Store interface {
	Get(ctx context.Context, collection, id string, dst any) error
	Set(ctx context.Context, collection, id string, doc any) error
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, q Query) ([]json.RawMessage, error)
	RunTransaction(ctx context.Context, collection, id string, fn TxFunc) error
	// Commit applies every write of b atomically. Empty batches are a no-op.
	Commit(ctx context.Context, b *Batch) error
	Ping(ctx context.Context) error
}

type opKind int

const (
	opSet opKind = iota
	opDelete
)

type op struct {
	kind       opKind
	collection string
	id         string
	doc        any
}

// Batch collects writes for a single Commit.
type Batch struct {
	ops []op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Set(collection, id string, doc any) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
	return b
}

func (b *Batch) Delete(collection, id string) *Batch {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
	return b
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// FindAs runs q and decodes every match into T.
func FindAs[T any](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	raws, err := s.Find(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Decode is a helper for TxFunc bodies. It reports false for an absent document.
func Decode(raw json.RawMessage, dst any) (bool, error) {
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode document: %w", err)
	}
	return true, nil
}
