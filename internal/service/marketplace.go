// Package service contains the marketplace coordinator that keeps the three
// stored collections consistent across mutations.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/limiter"
	"github.com/and161185/marketstore/internal/metrics"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
	"github.com/and161185/marketstore/internal/snapshot"
)

// MarketplaceService defines every operation over sellers, products and requests.
type MarketplaceService interface {
	// CreateSeller appends a new seller, hashing its plaintext credential.
	CreateSeller(ctx context.Context, in model.Seller) (model.Seller, error)
	// UpdateSeller replaces the profile fields of an existing seller.
	UpdateSeller(ctx context.Context, in model.Seller) error
	// DeleteSeller removes a seller without touching references to it.
	DeleteSeller(ctx context.Context, id string) error

	// CreateProduct stores a product and adds it to the owner's publications.
	CreateProduct(ctx context.Context, ownerID string, in model.Product) (model.Product, error)
	// UpdateProduct replaces the editable fields of a product.
	UpdateProduct(ctx context.Context, in model.Product) error
	// DeleteProduct removes a product without touching publication lists.
	DeleteProduct(ctx context.Context, id string) error
	// LikeProduct increments the like counter and returns the new value.
	LikeProduct(ctx context.Context, id string) (int, error)
	// SetProductStatus moves a product to another lifecycle state.
	SetProductStatus(ctx context.Context, id string, st model.ProductStatus) error

	// SendRequest appends a pending contact request.
	SendRequest(ctx context.Context, senderID, receiverID string) (model.Request, error)
	// SetRequestStatus answers a request; accepting links both sellers as contacts.
	SetRequestStatus(ctx context.Context, id string, st model.RequestStatus) error
	// DeleteRequest removes a request.
	DeleteRequest(ctx context.Context, id string) error

	// AddComment appends a comment to a product.
	AddComment(ctx context.Context, productID, authorID, text string) (model.Comment, error)
	// UpdateComment replaces a comment's text.
	UpdateComment(ctx context.Context, productID, commentID, text string) error
	// RemoveComment deletes a comment.
	RemoveComment(ctx context.Context, productID, commentID string) error

	Sellers(ctx context.Context) []model.Seller
	Products(ctx context.Context) []model.Product
	Requests(ctx context.Context) []model.Request
	FindSeller(ctx context.Context, id string) (model.Seller, bool)
	FindProduct(ctx context.Context, id string) (model.Product, bool)
	ProductsOfSeller(ctx context.Context, sellerID string) []model.Product
	RequestsBySender(ctx context.Context, sellerID string) []model.Request
	RequestsByReceiver(ctx context.Context, sellerID string) []model.Request

	CountProductsPublishedBetween(ctx context.Context, from, to time.Time) int
	CountProductsBySeller(ctx context.Context, sellerID string) int
	CountContacts(ctx context.Context, sellerID string) int
	Top10(ctx context.Context) []model.Product

	// Authenticate checks a plaintext credential against the stored hash.
	Authenticate(ctx context.Context, sellerID, credential string) error
	// RecordAction writes one user action line to the log.
	RecordAction(userType, action, screen string)
	// RefreshSnapshots reloads the text files and exports every collection.
	RefreshSnapshots(ctx context.Context, formats ...snapshot.Format) error
	// LoadSnapshot reads the snapshots of one format back into a linked graph.
	LoadSnapshot(ctx context.Context, f snapshot.Format) (*repository.Graph, error)
	// ExportReport writes the statistics report to path.
	ExportReport(ctx context.Context, path, author string, from, to time.Time, sellerID string) error
}

// MarketplaceServiceImpl implements MarketplaceService over a repository.Store.
type MarketplaceServiceImpl struct {
	store    repository.Store
	exporter *snapshot.Exporter
	log      *zap.Logger
	metrics  *metrics.Metrics
	lim      limiter.Limiter

	// mu serializes read-modify-write cycles so no mutation loses another's update.
	mu    sync.Mutex
	now   func() time.Time
	newID func() (string, error)
}

var _ MarketplaceService = (*MarketplaceServiceImpl)(nil)

// Login lockout defaults: five failures within 15 minutes block a seller for 15 minutes.
const (
	loginWindow   = 15 * time.Minute
	loginMaxFails = 5
	loginBlockFor = 15 * time.Minute
)

// Option customizes the coordinator.
type Option func(*MarketplaceServiceImpl)

// WithLimiter replaces the default in-memory login limiter.
func WithLimiter(l limiter.Limiter) Option {
	return func(s *MarketplaceServiceImpl) { s.lim = l }
}

// NewMarketplaceService constructs the coordinator. exporter may be nil when
// snapshots are not configured; log and m may be nil.
func NewMarketplaceService(store repository.Store, exporter *snapshot.Exporter, log *zap.Logger, m *metrics.Metrics, opts ...Option) *MarketplaceServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MarketplaceServiceImpl{
		store:    store,
		exporter: exporter,
		log:      log,
		metrics:  m,
		lim:      limiter.NewMemory(loginWindow, loginMaxFails, loginBlockFor),
		now:      time.Now,
		newID:    newUUID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func newUUID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// mutate runs one consistency cycle: load all collections fresh, apply the
// change, rewrite all three files. Nothing is written when apply fails.
func (s *MarketplaceServiceImpl) mutate(ctx context.Context, op string, apply func(g *repository.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.metrics.Since(op, time.Now())

	log := s.log.With(zap.String("op", op))
	g, err := s.store.Load(ctx)
	if err != nil {
		log.Error("load collections", zap.Error(err))
		return fmt.Errorf("%s: load: %w", op, err)
	}
	if err := apply(g); err != nil {
		log.Warn("mutation rejected", zap.Error(err))
		return err
	}
	if err := s.store.Save(ctx, g); err != nil {
		log.Error("save collections", zap.Error(err))
		return fmt.Errorf("%s: save: %w", op, err)
	}
	s.metrics.Mutation(op)
	log.Info("mutation applied")
	return nil
}

// appendOnly runs a create-only flow: the duplicate check sees a fresh load
// and the new record is appended without rewriting existing lines.
func (s *MarketplaceServiceImpl) appendOnly(ctx context.Context, op string, check func(g *repository.Graph) error, write func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.metrics.Since(op, time.Now())

	log := s.log.With(zap.String("op", op))
	g, err := s.store.Load(ctx)
	if err != nil {
		log.Error("load collections", zap.Error(err))
		return fmt.Errorf("%s: load: %w", op, err)
	}
	if err := check(g); err != nil {
		log.Warn("mutation rejected", zap.Error(err))
		return err
	}
	if err := write(); err != nil {
		log.Error("append record", zap.Error(err))
		return fmt.Errorf("%s: append: %w", op, err)
	}
	s.metrics.Mutation(op)
	log.Info("record created")
	return nil
}

// graph loads the collections for read-only use. I/O failures degrade to an
// empty graph.
func (s *MarketplaceServiceImpl) graph(ctx context.Context) *repository.Graph {
	g, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("load collections", zap.Error(err))
		return &repository.Graph{}
	}
	return g
}

// RecordAction logs who did what from which screen.
func (s *MarketplaceServiceImpl) RecordAction(userType, action, screen string) {
	s.log.Info("user action",
		zap.String("user_type", userType),
		zap.String("action", action),
		zap.String("screen", screen),
		zap.Time("at", s.now()),
	)
}
