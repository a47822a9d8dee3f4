package flatfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/codec"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/metrics"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
)

// Paths locates the three text files.
type Paths struct {
	Sellers  string
	Products string
	Requests string
}

func (p Paths) validate() error {
	switch {
	case p.Sellers == "":
		return fmt.Errorf("%w: sellers file", errs.ErrMissingConfig)
	case p.Products == "":
		return fmt.Errorf("%w: products file", errs.ErrMissingConfig)
	case p.Requests == "":
		return fmt.Errorf("%w: requests file", errs.ErrMissingConfig)
	}
	return nil
}

// Store keeps sellers, products and requests in three text files.
type Store struct {
	sellers  *Table[model.Seller]
	products *Table[model.Product]
	requests *Table[model.Request]
	log      *zap.Logger
	metrics  *metrics.Metrics
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a store. All three paths are required.
func NewStore(p Paths, log *zap.Logger, m *metrics.Metrics) (*Store, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sellers:  NewTable[model.Seller](p.Sellers, codec.SellerCodec{}, log, m),
		products: NewTable[model.Product](p.Products, codec.ProductCodec{}, log, m),
		requests: NewTable[model.Request](p.Requests, codec.RequestCodec{}, log, m),
		log:      log,
		metrics:  m,
	}, nil
}

// Load decodes all three files once and links references in a single pass.
func (s *Store) Load(ctx context.Context) (*repository.Graph, error) {
	defer s.metrics.Since("load", time.Now())

	products, err := s.products.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	sellers, err := s.sellers.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	g, st := repository.Link(sellers, products, requests)
	if st.Dangling > 0 || st.Duplicates > 0 {
		s.log.Warn("integrity defects in stored data",
			zap.Int("dangling_refs", st.Dangling),
			zap.Int("duplicate_ids", st.Duplicates),
		)
	}
	return g, nil
}

// Save rewrites products, sellers and requests, in that order. All three
// collections are encoded first; if any record is rejected no file is touched.
// Once writing starts every file is attempted and the failures are joined.
func (s *Store) Save(ctx context.Context, g *repository.Graph) error {
	defer s.metrics.Since("save", time.Now())

	products, perr := s.products.Encode(g.Products)
	sellers, serr := s.sellers.Encode(g.Sellers)
	requests, rerr := s.requests.Encode(g.Requests)
	if err := errors.Join(perr, serr, rerr); err != nil {
		s.log.Error("collections rejected, nothing written", zap.Error(err))
		return err
	}

	err := errors.Join(
		s.products.Replace(ctx, products),
		s.sellers.Replace(ctx, sellers),
		s.requests.Replace(ctx, requests),
	)
	if err != nil {
		return err
	}
	s.log.Info("collections saved",
		zap.Int("sellers", len(g.Sellers)),
		zap.Int("products", len(g.Products)),
		zap.Int("requests", len(g.Requests)),
	)
	return nil
}

// Sellers returns the seller repository.
func (s *Store) Sellers() repository.SellerRepository {
	return &repo[model.Seller]{store: s, table: s.sellers,
		pick: func(g *repository.Graph) []model.Seller { return g.Sellers },
		id:   func(v model.Seller) string { return v.ID }}
}

// Products returns the product repository.
func (s *Store) Products() repository.ProductRepository {
	return &repo[model.Product]{store: s, table: s.products,
		pick: func(g *repository.Graph) []model.Product { return g.Products },
		id:   func(v model.Product) string { return v.ID }}
}

// Requests returns the request repository.
func (s *Store) Requests() repository.RequestRepository {
	return &repo[model.Request]{store: s, table: s.requests,
		pick: func(g *repository.Graph) []model.Request { return g.Requests },
		id:   func(v model.Request) string { return v.ID }}
}
