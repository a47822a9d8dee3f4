package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/model"
)

// TopN is the size of the popularity ranking.
const TopN = 10

// TopProducts returns at most n products by descending likes. Ties keep
// their input order. ps is not modified.
func TopProducts(ps []model.Product, n int) []model.Product {
	out := append([]model.Product(nil), ps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CountProductsPublishedBetween counts products with from <= PublishedAt <= to.
func (s *MarketplaceServiceImpl) CountProductsPublishedBetween(ctx context.Context, from, to time.Time) int {
	n := 0
	for _, p := range s.Products(ctx) {
		if !p.PublishedAt.Before(from) && !p.PublishedAt.After(to) {
			n++
		}
	}
	s.log.Info("products published in range",
		zap.Time("from", from), zap.Time("to", to), zap.Int("count", n))
	return n
}

// CountProductsBySeller counts the seller's publications that still resolve.
// An unknown seller counts zero.
func (s *MarketplaceServiceImpl) CountProductsBySeller(ctx context.Context, sellerID string) int {
	seller, ok := s.FindSeller(ctx, sellerID)
	if !ok {
		s.log.Warn("seller not found", zap.String("seller_id", sellerID))
		return 0
	}
	n := 0
	for _, ref := range seller.Publications {
		if ref.Resolved() {
			n++
		}
	}
	s.log.Info("products by seller", zap.String("seller_id", sellerID), zap.Int("count", n))
	return n
}

// CountContacts counts the seller's contacts that still resolve.
func (s *MarketplaceServiceImpl) CountContacts(ctx context.Context, sellerID string) int {
	seller, ok := s.FindSeller(ctx, sellerID)
	if !ok {
		s.log.Warn("seller not found", zap.String("seller_id", sellerID))
		return 0
	}
	n := 0
	for _, ref := range seller.Contacts {
		if ref.Resolved() {
			n++
		}
	}
	s.log.Info("contacts of seller", zap.String("seller_id", sellerID), zap.Int("count", n))
	return n
}

// Top10 ranks the stored products by likes.
func (s *MarketplaceServiceImpl) Top10(ctx context.Context) []model.Product {
	top := TopProducts(s.Products(ctx), TopN)
	s.log.Info("top products ranked", zap.Int("count", len(top)))
	return top
}
