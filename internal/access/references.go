package access

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// ErrForeignReference is returned when a product points at a shop, category
// or sale type the caller does not own
var ErrForeignReference = errors.New("reference is not owned by caller")

// ReferenceKind names a table a product refers to
type ReferenceKind string

const (
	RefShop     ReferenceKind = "shop"
	RefCategory ReferenceKind = "category"
	RefSaleType ReferenceKind = "sale_type"
)

// ReferenceSet is what a product submission points at
type ReferenceSet struct {
	ShopID     uint
	CategoryID uint
	SaleTypeID uint
}

// ReferenceLookup lists the ids of one kind visible to scope
type ReferenceLookup interface {
	ReferenceIDs(ctx context.Context, kind ReferenceKind, scope Scope) ([]uint, error)
}

// ReferenceError names the first reference that failed the check
type ReferenceError struct {
	Kind ReferenceKind
	ID   uint
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, ErrForeignReference)
}

func (e *ReferenceError) Unwrap() error { return ErrForeignReference }

// RequireReferences re-checks at submit time that every reference belongs to
// the caller. The three lists are fetched concurrently; the first lookup error
// cancels the others.
func RequireReferences(ctx context.Context, scope Scope, refs ReferenceSet, lookup ReferenceLookup) error {
	wanted := []struct {
		kind ReferenceKind
		id   uint
	}{
		{RefShop, refs.ShopID},
		{RefCategory, refs.CategoryID},
		{RefSaleType, refs.SaleTypeID},
	}

	lists := make([][]uint, len(wanted))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range wanted {
		g.Go(func() error {
			ids, err := lookup.ReferenceIDs(gctx, w.kind, scope)
			if err != nil {
				return fmt.Errorf("list %s ids: %w", w.kind, err)
			}
			lists[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, w := range wanted {
		if w.id == 0 || !slices.Contains(lists[i], w.id) {
			return &ReferenceError{Kind: w.kind, ID: w.id}
		}
	}
	return nil
}
