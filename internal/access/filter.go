package access

import (
	"context"

	"go.uber.org/zap"
)

// Filter keeps the rows visible to scope. A privileged scope keeps everything.
// Input order is preserved and the result is never nil.
func Filter[T any](scope Scope, rows []T, ownerOf func(T) uint) []T {
	if scope.Privileged() {
		if rows == nil {
			return []T{}
		}
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if owner := ownerOf(r); owner != 0 && owner == scope.UserID {
			out = append(out, r)
		}
	}
	return out
}

// FilterByShops keeps rows whose shop is one of ownedShopIDs. Used for
// products and social contacts, which are owned through a shop.
func FilterByShops[T any](scope Scope, rows []T, shopOf func(T) uint, ownedShopIDs []uint) []T {
	if scope.Privileged() {
		if rows == nil {
			return []T{}
		}
		return rows
	}
	owned := make(map[uint]struct{}, len(ownedShopIDs))
	for _, id := range ownedShopIDs {
		owned[id] = struct{}{}
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := owned[shopOf(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Visible is Filter for callers whose identity may be unresolved. A nil scope
// yields an empty collection and a logged diagnostic instead of an error.
func Visible[T any](ctx context.Context, logger *zap.Logger, scope *Scope, rows []T, ownerOf func(T) uint) []T {
	if scope == nil {
		logger.Warn("caller identity unresolved, returning empty collection",
			zap.Int("candidates", len(rows)),
			zap.Error(ctx.Err()))
		return []T{}
	}
	return Filter(*scope, rows, ownerOf)
}
