package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/convert"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/repository"
	"github.com/and161185/marketstore/internal/report"
	"github.com/and161185/marketstore/internal/snapshot"
)

// RefreshSnapshots loads the text collections once and exports each kind in
// every requested format (all formats when none are given). Every export is
// attempted; failures are joined.
func (s *MarketplaceServiceImpl) RefreshSnapshots(ctx context.Context, formats ...snapshot.Format) error {
	if s.exporter == nil {
		return fmt.Errorf("%w: snapshot exporter", errs.ErrMissingConfig)
	}
	if len(formats) == 0 {
		formats = snapshot.Formats()
	}
	defer s.metrics.Since("refresh_snapshots", time.Now())

	g, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("load collections", zap.Error(err))
		return fmt.Errorf("refresh snapshots: %w", err)
	}
	sellers := convert.ToSellerDocs(g.Sellers)
	products := convert.ToProductDocs(g.Products)
	requests := convert.ToRequestDocs(g.Requests)

	var all []error
	for _, f := range formats {
		all = append(all,
			s.exporter.ExportSellers(ctx, f, sellers),
			s.exporter.ExportProducts(ctx, f, products),
			s.exporter.ExportRequests(ctx, f, requests),
		)
	}
	return errors.Join(all...)
}

// LoadSnapshot reads the three snapshots of format f and links them. A
// snapshot file that was never written reads as an empty collection.
func (s *MarketplaceServiceImpl) LoadSnapshot(ctx context.Context, f snapshot.Format) (*repository.Graph, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("%w: snapshot exporter", errs.ErrMissingConfig)
	}
	sellerDocs, err := s.exporter.ImportSellers(ctx, f)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	productDocs, err := s.exporter.ImportProducts(ctx, f)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	requestDocs, err := s.exporter.ImportRequests(ctx, f)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	products, err := convert.FromProductDocs(productDocs)
	if err != nil {
		return nil, err
	}
	requests, err := convert.FromRequestDocs(requestDocs)
	if err != nil {
		return nil, err
	}
	g, st := repository.Link(convert.FromSellerDocs(sellerDocs), products, requests)
	if st.Dangling > 0 || st.Duplicates > 0 {
		s.log.Warn("integrity defects in snapshot",
			zap.String("format", string(f)),
			zap.Int("dangling_refs", st.Dangling),
			zap.Int("duplicate_ids", st.Duplicates),
		)
	}
	return g, nil
}

// ExportReport gathers the statistics and writes them to path.
func (s *MarketplaceServiceImpl) ExportReport(ctx context.Context, path, author string, from, to time.Time, sellerID string) error {
	r := report.Report{
		GeneratedAt:      s.now(),
		Author:           author,
		From:             from,
		To:               to,
		PublishedInRange: s.CountProductsPublishedBetween(ctx, from, to),
		SellerID:         sellerID,
		SellerProducts:   s.CountProductsBySeller(ctx, sellerID),
		SellerContacts:   s.CountContacts(ctx, sellerID),
		Top:              s.Top10(ctx),
	}
	if err := report.WriteFile(path, r); err != nil {
		s.log.Error("export report", zap.String("path", path), zap.Error(err))
		return err
	}
	s.log.Info("report exported", zap.String("path", path))
	return nil
}
