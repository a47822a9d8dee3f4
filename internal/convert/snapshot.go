// Package convert maps domain entities to and from their snapshot documents.
package convert

import (
	"fmt"

	"github.com/and161185/marketstore/internal/model"
	"github.com/and161185/marketstore/internal/snapshot"
)

// --- helpers ---

func ids[T any](refs []model.Ref[T]) []string {
	if len(refs) == 0 {
		return nil
	}
	return model.IDs(refs)
}

func refs[T any](ids []string) []model.Ref[T] {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.Ref[T], 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Ref[T]{ID: id})
	}
	return out
}

// --- Seller ---

// ToSellerDoc flattens a seller; references become IDs.
func ToSellerDoc(s model.Seller) snapshot.SellerDoc {
	return snapshot.SellerDoc{
		ID:           s.ID,
		Name:         s.Name,
		Surname:      s.Surname,
		NationalID:   s.NationalID,
		Address:      s.Address,
		Credential:   s.Credential,
		Publications: ids(s.Publications),
		Contacts:     ids(s.Contacts),
	}
}

// FromSellerDoc rebuilds an unresolved seller.
func FromSellerDoc(d snapshot.SellerDoc) model.Seller {
	return model.Seller{
		ID:           d.ID,
		Name:         d.Name,
		Surname:      d.Surname,
		NationalID:   d.NationalID,
		Address:      d.Address,
		Credential:   d.Credential,
		Publications: refs[model.Product](d.Publications),
		Contacts:     refs[model.Seller](d.Contacts),
	}
}

// ToSellerDocs converts a slice of sellers.
func ToSellerDocs(in []model.Seller) []snapshot.SellerDoc {
	out := make([]snapshot.SellerDoc, 0, len(in))
	for _, s := range in {
		out = append(out, ToSellerDoc(s))
	}
	return out
}

// FromSellerDocs converts a slice of seller documents.
func FromSellerDocs(in []snapshot.SellerDoc) []model.Seller {
	out := make([]model.Seller, 0, len(in))
	for _, d := range in {
		out = append(out, FromSellerDoc(d))
	}
	return out
}

// --- Product ---

// ToProductDoc flattens a product with its comments.
func ToProductDoc(p model.Product) snapshot.ProductDoc {
	var comments []snapshot.CommentDoc
	for _, c := range p.Comments {
		comments = append(comments, snapshot.CommentDoc{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text})
	}
	return snapshot.ProductDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PublishedAt: p.PublishedAt.UTC(),
		ImagePath:   p.ImagePath,
		Price:       p.Price,
		Likes:       p.Likes,
		Comments:    comments,
		Status:      string(p.Status),
		Category:    string(p.Category),
	}
}

// FromProductDoc rebuilds a product. Unknown status or category names fail.
func FromProductDoc(d snapshot.ProductDoc) (model.Product, error) {
	status, err := model.ParseProductStatus(d.Status)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %s: %w", d.ID, err)
	}
	cat, err := model.ParseCategory(d.Category)
	if err != nil {
		return model.Product{}, fmt.Errorf("product %s: %w", d.ID, err)
	}
	var comments []model.Comment
	for _, c := range d.Comments {
		comments = append(comments, model.Comment{ID: c.ID, AuthorID: c.AuthorID, Text: c.Text})
	}
	return model.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PublishedAt: d.PublishedAt.UTC(),
		ImagePath:   d.ImagePath,
		Price:       d.Price,
		Likes:       d.Likes,
		Comments:    comments,
		Status:      status,
		Category:    cat,
	}, nil
}

// ToProductDocs converts a slice of products.
func ToProductDocs(in []model.Product) []snapshot.ProductDoc {
	out := make([]snapshot.ProductDoc, 0, len(in))
	for _, p := range in {
		out = append(out, ToProductDoc(p))
	}
	return out
}

// FromProductDocs converts a slice of product documents.
func FromProductDocs(in []snapshot.ProductDoc) ([]model.Product, error) {
	out := make([]model.Product, 0, len(in))
	for i, d := range in {
		p, err := FromProductDoc(d)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// --- Request ---

// ToRequestDoc flattens a request.
func ToRequestDoc(r model.Request) snapshot.RequestDoc {
	return snapshot.RequestDoc{
		ID:         r.ID,
		SenderID:   r.Sender.ID,
		ReceiverID: r.Receiver.ID,
		Status:     string(r.Status),
	}
}

// FromRequestDoc rebuilds an unresolved request.
func FromRequestDoc(d snapshot.RequestDoc) (model.Request, error) {
	status, err := model.ParseRequestStatus(d.Status)
	if err != nil {
		return model.Request{}, fmt.Errorf("request %s: %w", d.ID, err)
	}
	return model.Request{
		ID:       d.ID,
		Sender:   model.SellerRef{ID: d.SenderID},
		Receiver: model.SellerRef{ID: d.ReceiverID},
		Status:   status,
	}, nil
}

// ToRequestDocs converts a slice of requests.
func ToRequestDocs(in []model.Request) []snapshot.RequestDoc {
	out := make([]snapshot.RequestDoc, 0, len(in))
	for _, r := range in {
		out = append(out, ToRequestDoc(r))
	}
	return out
}

// FromRequestDocs converts a slice of request documents.
func FromRequestDocs(in []snapshot.RequestDoc) ([]model.Request, error) {
	out := make([]model.Request, 0, len(in))
	for i, d := range in {
		r, err := FromRequestDoc(d)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
