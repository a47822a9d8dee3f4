// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
)

// Ref is a stored ID together with its read-time resolution.
// Target is nil when the reference has not been resolved or points at an
// entity that no longer exists (a dangling reference).
type Ref[T any] struct {
	ID     string `validate:"refsafe"`
	Target *T     `validate:"-"`
}

// Resolved reports whether the reference points at a loaded entity.
func (r Ref[T]) Resolved() bool { return r.Target != nil }

// ProductRef references a product by ID.
type ProductRef = Ref[Product]

// SellerRef references a seller by ID.
type SellerRef = Ref[Seller]

// RefTo builds a resolved reference from an entity pointer.
func RefTo[T any](id string, target *T) Ref[T] { return Ref[T]{ID: id, Target: target} }

// IDs returns the IDs of refs in order.
func IDs[T any](refs []Ref[T]) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.ID)
	}
	return out
}

// Seller is a marketplace participant owning publications and a contact network.
type Seller struct {
	ID           string       `validate:"required,refsafe"`
	Name         string       `validate:"recordsafe"`
	Surname      string       `validate:"recordsafe"`
	NationalID   string       `validate:"recordsafe"`
	Address      string       `validate:"recordsafe"`
	Credential   string       `validate:"recordsafe"` // argon2id encoded, see internal/crypto
	Publications []ProductRef `validate:"dive"`       // ordered
	Contacts     []SellerRef  `validate:"dive"`
}

// PublicationIDs returns product IDs in publication order.
func (s *Seller) PublicationIDs() []string { return IDs(s.Publications) }

// ContactIDs returns contact seller IDs.
func (s *Seller) ContactIDs() []string { return IDs(s.Contacts) }

// HasContact reports whether id is in the contact network.
func (s *Seller) HasContact(id string) bool {
	for _, c := range s.Contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

// AddContact appends ref unless already present. Reports whether it was added.
func (s *Seller) AddContact(ref SellerRef) bool {
	if ref.ID == s.ID || s.HasContact(ref.ID) {
		return false
	}
	s.Contacts = append(s.Contacts, ref)
	return true
}

// AddPublication appends ref unless already present.
func (s *Seller) AddPublication(ref ProductRef) bool {
	for _, p := range s.Publications {
		if p.ID == ref.ID {
			return false
		}
	}
	s.Publications = append(s.Publications, ref)
	return true
}

// RemovePublication drops the product with id from the publication list.
func (s *Seller) RemovePublication(id string) bool {
	for i, p := range s.Publications {
		if p.ID == id {
			s.Publications = append(s.Publications[:i], s.Publications[i+1:]...)
			return true
		}
	}
	return false
}

// Comment is owned by a product and persisted inside its record.
type Comment struct {
	ID       string `validate:"required,refsafe"`
	AuthorID string `validate:"refsafe"`
	Text     string // free text, encoded so it never collides with separators
}

// Product is a publication listed by a seller.
type Product struct {
	ID          string `validate:"required,refsafe"`
	Name        string `validate:"recordsafe"`
	Description string `validate:"recordsafe"`
	PublishedAt time.Time
	ImagePath   string    `validate:"recordsafe"`
	Price       int       `validate:"min=0"`
	Likes       int       `validate:"min=0"`
	Comments    []Comment `validate:"dive"` // ordered
	Status      ProductStatus
	Category    Category
}

// AddComment appends c to the comment list.
func (p *Product) AddComment(c Comment) { p.Comments = append(p.Comments, c) }

// FindComment returns the comment with id.
func (p *Product) FindComment(id string) (Comment, bool) {
	for _, c := range p.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// UpdateComment replaces the text of comment id. Reports whether it existed.
func (p *Product) UpdateComment(id, text string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments[i].Text = text
			return true
		}
	}
	return false
}

// RemoveComment deletes comment id. Reports whether it existed.
func (p *Product) RemoveComment(id string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// Request is a contact (friend) request between two sellers.
type Request struct {
	ID       string    `validate:"required,refsafe"`
	Sender   SellerRef
	Receiver SellerRef
	Status   RequestStatus
}
