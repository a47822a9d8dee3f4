package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
)

// SendRequest appends a pending request from sender to receiver. Both sellers
// must exist; sellers already in contact or with a pending request between
// them get errs.ErrAlreadyExists.
func (s *MarketplaceServiceImpl) SendRequest(ctx context.Context, senderID, receiverID string) (model.Request, error) {
	if senderID == receiverID {
		return model.Request{}, fmt.Errorf("request to self: %w", errs.ErrInvalidRecord)
	}
	id, err := s.newID()
	if err != nil {
		return model.Request{}, err
	}
	req := model.Request{
		ID:       id,
		Sender:   model.SellerRef{ID: senderID},
		Receiver: model.SellerRef{ID: receiverID},
		Status:   model.RequestPending,
	}

	err = s.appendOnly(ctx, "send_request",
		func(g *repository.Graph) error {
			sender, ok := g.Seller(senderID)
			if !ok {
				return fmt.Errorf("sender %s: %w", senderID, errs.ErrNotFound)
			}
			if _, ok := g.Seller(receiverID); !ok {
				return fmt.Errorf("receiver %s: %w", receiverID, errs.ErrNotFound)
			}
			if sender.HasContact(receiverID) {
				return fmt.Errorf("contact %s-%s: %w", senderID, receiverID, errs.ErrAlreadyExists)
			}
			for _, r := range g.Requests {
				if r.Status == model.RequestPending && samePair(r, senderID, receiverID) {
					return fmt.Errorf("pending request %s: %w", r.ID, errs.ErrAlreadyExists)
				}
			}
			return nil
		},
		func() error { return s.store.Requests().Append(ctx, req) },
	)
	if err != nil {
		return model.Request{}, err
	}
	return req, nil
}

func samePair(r model.Request, a, b string) bool {
	return (r.Sender.ID == a && r.Receiver.ID == b) || (r.Sender.ID == b && r.Receiver.ID == a)
}

// SetRequestStatus records the answer to a request. Accepting adds each
// seller to the other's contacts; both must still exist.
func (s *MarketplaceServiceImpl) SetRequestStatus(ctx context.Context, id string, st model.RequestStatus) error {
	if _, err := model.ParseRequestStatus(string(st)); err != nil {
		return err
	}
	return s.mutate(ctx, "set_request_status", func(g *repository.Graph) error {
		r, ok := g.Request(id)
		if !ok {
			return fmt.Errorf("request %s: %w", id, errs.ErrNotFound)
		}
		if st == model.RequestAccepted {
			sender, ok := g.Seller(r.Sender.ID)
			if !ok {
				return fmt.Errorf("sender %s: %w", r.Sender.ID, errs.ErrNotFound)
			}
			receiver, ok := g.Seller(r.Receiver.ID)
			if !ok {
				return fmt.Errorf("receiver %s: %w", r.Receiver.ID, errs.ErrNotFound)
			}
			sender.AddContact(model.RefTo(receiver.ID, receiver))
			receiver.AddContact(model.RefTo(sender.ID, sender))
		}
		r.Status = st
		return nil
	})
}

// DeleteRequest removes a request.
func (s *MarketplaceServiceImpl) DeleteRequest(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_request", func(g *repository.Graph) error {
		if !g.RemoveRequest(id) {
			return fmt.Errorf("request %s: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}

// Requests returns every stored request, or none when the files cannot be read.
func (s *MarketplaceServiceImpl) Requests(ctx context.Context) []model.Request {
	out, err := s.store.Requests().All(ctx)
	if err != nil {
		s.log.Error("list requests", zap.Error(err))
		return nil
	}
	return out
}

// RequestsBySender returns the requests sent by sellerID.
func (s *MarketplaceServiceImpl) RequestsBySender(ctx context.Context, sellerID string) []model.Request {
	return filterRequests(s.Requests(ctx), func(r model.Request) bool { return r.Sender.ID == sellerID })
}

// RequestsByReceiver returns the requests addressed to sellerID.
func (s *MarketplaceServiceImpl) RequestsByReceiver(ctx context.Context, sellerID string) []model.Request {
	return filterRequests(s.Requests(ctx), func(r model.Request) bool { return r.Receiver.ID == sellerID })
}

func filterRequests(in []model.Request, keep func(model.Request) bool) []model.Request {
	var out []model.Request
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
