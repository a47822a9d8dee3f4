// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/marketstore/internal/model"
)

// EntityRepository provides whole-collection access to one entity kind.
type EntityRepository[T any] interface {
	// All returns every stored entity in file order with references resolved.
	All(ctx context.Context) ([]T, error)
	// FindByID scans All for id. The bool is false when no entity has that id.
	FindByID(ctx context.Context, id string) (T, bool, error)
	// WriteAll replaces the stored collection with items, in order.
	WriteAll(ctx context.Context, items []T) error
	// Append adds one record without rewriting existing ones.
	Append(ctx context.Context, item T) error
}

// SellerRepository stores sellers.
type SellerRepository = EntityRepository[model.Seller]

// ProductRepository stores products.
type ProductRepository = EntityRepository[model.Product]

// RequestRepository stores contact requests.
type RequestRepository = EntityRepository[model.Request]

// GraphStore loads and saves the three collections together.
type GraphStore interface {
	// Load decodes all collections and links their references.
	Load(ctx context.Context) (*Graph, error)
	// Save rewrites all three collections, attempting every one even if an earlier write fails.
	Save(ctx context.Context, g *Graph) error
}

// Store bundles the graph view with the per-kind repositories.
type Store interface {
	GraphStore
	Sellers() SellerRepository
	Products() ProductRepository
	Requests() RequestRepository
}
