package repository

import (
	"github.com/and161185/marketstore/internal/model"
)

// Graph is the in-memory object graph of one consistent load.
// References point into the Graph's own slices; appending to a slice after
// Link may leave older pointers referring to a stale copy.
type Graph struct {
	Sellers  []model.Seller
	Products []model.Product
	Requests []model.Request
}

// LinkStats reports integrity defects found while linking.
type LinkStats struct {
	Dangling   int // references whose target is absent
	Duplicates int // repeated IDs within one collection
}

// Link builds a Graph from decoded records, resolving every reference by ID
// lookup over the already-decoded peers. Unknown IDs stay as dangling refs.
// For duplicated IDs the first record wins.
func Link(sellers []model.Seller, products []model.Product, requests []model.Request) (*Graph, LinkStats) {
	g := &Graph{Sellers: sellers, Products: products, Requests: requests}
	var st LinkStats

	productIdx := make(map[string]*model.Product, len(g.Products))
	for i := range g.Products {
		id := g.Products[i].ID
		if _, dup := productIdx[id]; dup {
			st.Duplicates++
			continue
		}
		productIdx[id] = &g.Products[i]
	}
	sellerIdx := make(map[string]*model.Seller, len(g.Sellers))
	for i := range g.Sellers {
		id := g.Sellers[i].ID
		if _, dup := sellerIdx[id]; dup {
			st.Duplicates++
			continue
		}
		sellerIdx[id] = &g.Sellers[i]
	}
	seen := make(map[string]struct{}, len(g.Requests))
	for _, r := range g.Requests {
		if _, dup := seen[r.ID]; dup {
			st.Duplicates++
		}
		seen[r.ID] = struct{}{}
	}

	resolveSeller := func(ref *model.SellerRef) {
		ref.Target = sellerIdx[ref.ID]
		if ref.Target == nil && ref.ID != "" {
			st.Dangling++
		}
	}

	for i := range g.Sellers {
		s := &g.Sellers[i]
		for j := range s.Publications {
			ref := &s.Publications[j]
			ref.Target = productIdx[ref.ID]
			if ref.Target == nil {
				st.Dangling++
			}
		}
		for j := range s.Contacts {
			resolveSeller(&s.Contacts[j])
		}
	}
	for i := range g.Requests {
		resolveSeller(&g.Requests[i].Sender)
		resolveSeller(&g.Requests[i].Receiver)
	}
	return g, st
}

// Relink re-resolves all references, e.g. after the slices were modified.
func (g *Graph) Relink() LinkStats {
	ng, st := Link(g.Sellers, g.Products, g.Requests)
	*g = *ng
	return st
}

// Seller returns the first seller with id.
func (g *Graph) Seller(id string) (*model.Seller, bool) {
	for i := range g.Sellers {
		if g.Sellers[i].ID == id {
			return &g.Sellers[i], true
		}
	}
	return nil, false
}

// Product returns the first product with id.
func (g *Graph) Product(id string) (*model.Product, bool) {
	for i := range g.Products {
		if g.Products[i].ID == id {
			return &g.Products[i], true
		}
	}
	return nil, false
}

// Request returns the first request with id.
func (g *Graph) Request(id string) (*model.Request, bool) {
	for i := range g.Requests {
		if g.Requests[i].ID == id {
			return &g.Requests[i], true
		}
	}
	return nil, false
}

// RemoveSeller drops every seller with id. References to it are left in place.
func (g *Graph) RemoveSeller(id string) bool {
	n := len(g.Sellers)
	g.Sellers = removeWhere(g.Sellers, func(s model.Seller) bool { return s.ID == id })
	return len(g.Sellers) != n
}

// RemoveProduct drops every product with id. References to it are left in place.
func (g *Graph) RemoveProduct(id string) bool {
	n := len(g.Products)
	g.Products = removeWhere(g.Products, func(p model.Product) bool { return p.ID == id })
	return len(g.Products) != n
}

// RemoveRequest drops every request with id.
func (g *Graph) RemoveRequest(id string) bool {
	n := len(g.Requests)
	g.Requests = removeWhere(g.Requests, func(r model.Request) bool { return r.ID == id })
	return len(g.Requests) != n
}

// removeWhere copies into a new slice so existing Target pointers keep
// referring to the entity they were resolved to.
func removeWhere[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}
