package state

import (
	"procurement_tracker/internal/models"
)

// mergeByID reconciles a collection that carries no per-record
// modification time: union by id, remote wins on collision, local-only
// ids (records not yet uploaded) are preserved unchanged. Remote
// records keep the remote ordering; local-only records follow in local
// order, so the result is deterministic.
func mergeByID[T any](local, remote []T, id func(T) uint) []T {
	out := make([]T, 0, len(remote)+len(local))
	seen := make(map[uint]struct{}, len(remote))
	for _, r := range remote {
		out = append(out, r)
		seen[id(r)] = struct{}{}
	}
	for _, l := range local {
		if _, ok := seen[id(l)]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// MergeOrderReplicas reconciles orders by last write wins on
// ModifiedAt. For an id present on both sides the strictly newer copy
// is kept; ties go to the remote copy. Ids present on only one side are
// kept as-is.
func MergeOrderReplicas(local, remote []models.Order) []models.Order {
	localByID := make(map[uint]models.Order, len(local))
	for _, o := range local {
		localByID[o.ID] = o
	}
	out := make([]models.Order, 0, len(remote)+len(local))
	seen := make(map[uint]struct{}, len(remote))
	for _, r := range remote {
		seen[r.ID] = struct{}{}
		if l, ok := localByID[r.ID]; ok && l.ModifiedAt.After(r.ModifiedAt) {
			out = append(out, l)
		} else {
			out = append(out, r)
		}
	}
	for _, l := range local {
		if _, ok := seen[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// MergeReplicas folds a full remote snapshot into the local collections
// using the per-collection rules and returns the intent that commits
// all five results in a single transition.
func MergeReplicas(local models.AppState, remote RemoteSnapshot) ReplaceCollections {
	return ReplaceCollections{
		Stores:     mergeByID(local.Stores, remote.Stores, func(s models.Store) uint { return s.ID }),
		Suppliers:  mergeByID(local.Suppliers, remote.Suppliers, func(s models.Supplier) uint { return s.ID }),
		Items:      mergeByID(local.Items, remote.Items, func(i models.Item) uint { return i.ID }),
		ItemPrices: mergeByID(local.ItemPrices, remote.ItemPrices, func(p models.ItemPrice) uint { return p.ID }),
		Orders:     MergeOrderReplicas(local.Orders, remote.Orders),
	}
}

// MergeRemote folds a remote snapshot into the current local replica.
// The merge runs inside the reducer, against the state actually being
// transitioned, so the five-collection swap is atomic with respect to
// every other intent.
type MergeRemote struct {
	Snapshot RemoteSnapshot
}

func (MergeRemote) isIntent() {}

// RemoteSnapshot is one consistent read of the remote datastore's
// collections.
type RemoteSnapshot struct {
	Stores     []models.Store
	Suppliers  []models.Supplier
	Items      []models.Item
	ItemPrices []models.ItemPrice
	Orders     []models.Order
}
