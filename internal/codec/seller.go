package codec

import (
	"strings"

	"github.com/and161185/marketstore/internal/model"
)

// SellerCodec encodes sellers as
// id%name%surname%nationalId%address%credential%p1,p2%c1,c2%
// The trailing delimiter is part of the historic format and is optional on read.
type SellerCodec struct{}

var _ Codec[model.Seller] = SellerCodec{}

// Kind implements Codec.
func (SellerCodec) Kind() string { return "seller" }

// Encode implements Codec.
func (c SellerCodec) Encode(s model.Seller) (string, error) {
	if err := check(c.Kind(), s); err != nil {
		return "", err
	}
	fields := []string{
		s.ID, s.Name, s.Surname, s.NationalID, s.Address, s.Credential,
		joinList(s.PublicationIDs()),
		joinList(s.ContactIDs()),
	}
	return strings.Join(fields, Delimiter) + Delimiter, nil
}

// Decode implements Codec. Lists missing at the end of the line decode as empty.
func (c SellerCodec) Decode(line string) (model.Seller, error) {
	fields := strings.Split(strings.TrimSuffix(line, Delimiter), Delimiter)
	if len(fields) < 6 || len(fields) > 8 {
		return model.Seller{}, malformed(c.Kind(), "want 6..8 fields, got %d", len(fields))
	}
	if fields[0] == "" {
		return model.Seller{}, malformed(c.Kind(), "empty id")
	}
	s := model.Seller{
		ID:         fields[0],
		Name:       fields[1],
		Surname:    fields[2],
		NationalID: fields[3],
		Address:    fields[4],
		Credential: fields[5],
	}
	if len(fields) > 6 {
		for _, id := range splitList(fields[6]) {
			s.Publications = append(s.Publications, model.ProductRef{ID: id})
		}
	}
	if len(fields) > 7 {
		for _, id := range splitList(fields[7]) {
			s.Contacts = append(s.Contacts, model.SellerRef{ID: id})
		}
	}
	if err := decoded(c.Kind(), s); err != nil {
		return model.Seller{}, err
	}
	return s, nil
}
