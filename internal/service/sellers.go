package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/codec"
	"github.com/and161185/marketstore/internal/crypto"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
)

// CreateSeller assigns an ID when none is given, hashes the credential and
// appends the seller. A taken ID fails with errs.ErrAlreadyExists.
func (s *MarketplaceServiceImpl) CreateSeller(ctx context.Context, in model.Seller) (model.Seller, error) {
	if in.ID == "" {
		id, err := s.newID()
		if err != nil {
			return model.Seller{}, err
		}
		in.ID = id
	}
	if err := s.protectCredential(&in); err != nil {
		return model.Seller{}, err
	}
	in.Publications, in.Contacts = nil, nil

	err := s.appendOnly(ctx, "create_seller",
		func(g *repository.Graph) error {
			if _, ok := g.Seller(in.ID); ok {
				return fmt.Errorf("seller %s: %w", in.ID, errs.ErrAlreadyExists)
			}
			return nil
		},
		func() error { return s.store.Sellers().Append(ctx, in) },
	)
	if err != nil {
		return model.Seller{}, err
	}
	return in, nil
}

// UpdateSeller replaces name, surname, national ID, address and, when given,
// the credential. Publication and contact lists have their own operations.
func (s *MarketplaceServiceImpl) UpdateSeller(ctx context.Context, in model.Seller) error {
	if err := s.protectCredential(&in); err != nil {
		return err
	}
	return s.mutate(ctx, "update_seller", func(g *repository.Graph) error {
		cur, ok := g.Seller(in.ID)
		if !ok {
			return fmt.Errorf("seller %s: %w", in.ID, errs.ErrNotFound)
		}
		next := *cur
		next.Name, next.Surname, next.NationalID, next.Address = in.Name, in.Surname, in.NationalID, in.Address
		if in.Credential != "" {
			next.Credential = in.Credential
		}
		if _, err := (codec.SellerCodec{}).Encode(next); err != nil {
			return err
		}
		*cur = next
		return nil
	})
}

// DeleteSeller removes the seller. Contacts, requests and products that
// reference it keep the ID and resolve as absent afterwards.
func (s *MarketplaceServiceImpl) DeleteSeller(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_seller", func(g *repository.Graph) error {
		if !g.RemoveSeller(id) {
			return fmt.Errorf("seller %s: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}

// Authenticate returns errs.ErrUnauthorized for an unknown seller or a wrong
// credential, and errs.ErrTooManyAttempts while the seller is locked out.
func (s *MarketplaceServiceImpl) Authenticate(ctx context.Context, sellerID, credential string) error {
	log := s.log.With(zap.String("seller_id", sellerID))
	ok, retry, err := s.lim.Allow(ctx, sellerID)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn("login blocked", zap.Duration("retry_after", retry))
		return fmt.Errorf("%w: retry in %s", errs.ErrTooManyAttempts, retry.Round(time.Second))
	}

	seller, found := s.FindSeller(ctx, sellerID)
	if !found || credential == "" || !crypto.VerifyCredential(credential, seller.Credential) {
		blocked, _, ferr := s.lim.Failure(ctx, sellerID)
		if ferr != nil {
			log.Error("limiter failure", zap.Error(ferr))
		}
		log.Warn("authentication failed", zap.Bool("blocked", blocked))
		return errs.ErrUnauthorized
	}
	if err := s.lim.Success(ctx, sellerID); err != nil {
		log.Error("limiter reset", zap.Error(err))
	}
	log.Info("authenticated")
	return nil
}

// protectCredential replaces a plaintext credential with its hash.
// Already hashed values pass through unchanged.
func (s *MarketplaceServiceImpl) protectCredential(in *model.Seller) error {
	if in.Credential == "" || crypto.IsHashed(in.Credential) {
		return nil
	}
	h, err := crypto.HashCredential(in.Credential)
	if err != nil {
		return errors.Join(errs.ErrInvalidRecord, err)
	}
	in.Credential = h
	return nil
}

// Sellers returns every stored seller, or none when the files cannot be read.
func (s *MarketplaceServiceImpl) Sellers(ctx context.Context) []model.Seller {
	out, err := s.store.Sellers().All(ctx)
	if err != nil {
		s.log.Error("list sellers", zap.Error(err))
		return nil
	}
	return out
}

// FindSeller looks a seller up by ID.
func (s *MarketplaceServiceImpl) FindSeller(ctx context.Context, id string) (model.Seller, bool) {
	v, ok, err := s.store.Sellers().FindByID(ctx, id)
	if err != nil {
		s.log.Error("find seller", zap.String("id", id), zap.Error(err))
		return model.Seller{}, false
	}
	return v, ok
}
