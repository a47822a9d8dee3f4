package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/codec"
	"github.com/and161185/marketstore/internal/errs"
	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/repository"
)

// CreateProduct stores in and appends it to the owner's publication list.
// Missing ID, publication time, status and category get defaults.
func (s *MarketplaceServiceImpl) CreateProduct(ctx context.Context, ownerID string, in model.Product) (model.Product, error) {
	if in.ID == "" {
		id, err := s.newID()
		if err != nil {
			return model.Product{}, err
		}
		in.ID = id
	}
	if in.PublishedAt.IsZero() {
		in.PublishedAt = s.now()
	}
	in.PublishedAt = in.PublishedAt.UTC().Truncate(time.Second)
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if err := checkProduct(in); err != nil {
		return model.Product{}, err
	}

	err := s.mutate(ctx, "create_product", func(g *repository.Graph) error {
		owner, ok := g.Seller(ownerID)
		if !ok {
			return fmt.Errorf("owner %s: %w", ownerID, errs.ErrNotFound)
		}
		if _, dup := g.Product(in.ID); dup {
			return fmt.Errorf("product %s: %w", in.ID, errs.ErrAlreadyExists)
		}
		owner.AddPublication(model.ProductRef{ID: in.ID})
		g.Products = append(g.Products, in)
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return in, nil
}

// UpdateProduct replaces name, description, image, price, category and, when
// set, status. Likes, comments and the publication time are kept.
func (s *MarketplaceServiceImpl) UpdateProduct(ctx context.Context, in model.Product) error {
	return s.withProduct(ctx, "update_product", in.ID, func(p *model.Product) error {
		p.Name, p.Description, p.ImagePath, p.Price = in.Name, in.Description, in.ImagePath, in.Price
		if in.Category != "" {
			p.Category = in.Category
		}
		if in.Status != "" {
			p.Status = in.Status
		}
		return nil
	})
}

// DeleteProduct removes the product. Publication lists keep the ID, which then
// resolves as absent.
func (s *MarketplaceServiceImpl) DeleteProduct(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_product", func(g *repository.Graph) error {
		if !g.RemoveProduct(id) {
			return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}

// LikeProduct increments the like counter.
func (s *MarketplaceServiceImpl) LikeProduct(ctx context.Context, id string) (int, error) {
	var likes int
	err := s.withProduct(ctx, "like_product", id, func(p *model.Product) error {
		p.Likes++
		likes = p.Likes
		return nil
	})
	return likes, err
}

// SetProductStatus changes the lifecycle state.
func (s *MarketplaceServiceImpl) SetProductStatus(ctx context.Context, id string, st model.ProductStatus) error {
	if _, err := model.ParseProductStatus(string(st)); err != nil {
		return err
	}
	return s.withProduct(ctx, "set_product_status", id, func(p *model.Product) error {
		p.Status = st
		return nil
	})
}

// AddComment appends a comment written by an existing seller.
func (s *MarketplaceServiceImpl) AddComment(ctx context.Context, productID, authorID, text string) (model.Comment, error) {
	id, err := s.newID()
	if err != nil {
		return model.Comment{}, err
	}
	c := model.Comment{ID: id, AuthorID: authorID, Text: text}
	err = s.mutate(ctx, "add_comment", func(g *repository.Graph) error {
		if _, ok := g.Seller(authorID); !ok {
			return fmt.Errorf("author %s: %w", authorID, errs.ErrNotFound)
		}
		p, ok := g.Product(productID)
		if !ok {
			return fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
		}
		p.AddComment(c)
		return checkProduct(*p)
	})
	if err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

// UpdateComment replaces the text of one comment.
func (s *MarketplaceServiceImpl) UpdateComment(ctx context.Context, productID, commentID, text string) error {
	return s.withProduct(ctx, "update_comment", productID, func(p *model.Product) error {
		if !p.UpdateComment(commentID, text) {
			return fmt.Errorf("comment %s: %w", commentID, errs.ErrNotFound)
		}
		return nil
	})
}

// RemoveComment deletes one comment.
func (s *MarketplaceServiceImpl) RemoveComment(ctx context.Context, productID, commentID string) error {
	return s.withProduct(ctx, "remove_comment", productID, func(p *model.Product) error {
		if !p.RemoveComment(commentID) {
			return fmt.Errorf("comment %s: %w", commentID, errs.ErrNotFound)
		}
		return nil
	})
}

// withProduct mutates a copy of the product and stores it only if it still encodes.
func (s *MarketplaceServiceImpl) withProduct(ctx context.Context, op, id string, fn func(p *model.Product) error) error {
	return s.mutate(ctx, op, func(g *repository.Graph) error {
		cur, ok := g.Product(id)
		if !ok {
			return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
		}
		next := *cur
		next.Comments = append([]model.Comment(nil), cur.Comments...)
		if err := fn(&next); err != nil {
			return err
		}
		if err := checkProduct(next); err != nil {
			return err
		}
		*cur = next
		return nil
	})
}

// Products returns every stored product, or none when the files cannot be read.
func (s *MarketplaceServiceImpl) Products(ctx context.Context) []model.Product {
	out, err := s.store.Products().All(ctx)
	if err != nil {
		s.log.Error("list products", zap.Error(err))
		return nil
	}
	return out
}

// FindProduct looks a product up by ID.
func (s *MarketplaceServiceImpl) FindProduct(ctx context.Context, id string) (model.Product, bool) {
	v, ok, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		s.log.Error("find product", zap.String("id", id), zap.Error(err))
		return model.Product{}, false
	}
	return v, ok
}

// ProductsOfSeller returns the resolved publications of a seller in order.
// Dangling publication IDs are skipped.
func (s *MarketplaceServiceImpl) ProductsOfSeller(ctx context.Context, sellerID string) []model.Product {
	seller, ok := s.FindSeller(ctx, sellerID)
	if !ok {
		return nil
	}
	var out []model.Product
	for _, ref := range seller.Publications {
		if ref.Resolved() {
			out = append(out, *ref.Target)
		}
	}
	return out
}

// checkProduct rejects products that would not survive a write and re-read.
func checkProduct(p model.Product) error {
	if _, err := model.ParseProductStatus(string(p.Status)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	if _, err := model.ParseCategory(string(p.Category)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	_, err := codec.ProductCodec{}.Encode(p)
	return err
}
