package codec

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/marketstore/internal/model"
)

// TimeLayout is the on-disk layout of product publication timestamps.
const TimeLayout = time.RFC3339

const productFields = 10

var textEncoding = base64.RawURLEncoding

// ProductCodec encodes products as
// id%name%description%publishedAt%imagePath%price%likes%comments%STATUS%CATEGORY
// where comments is a comma-joined list of id:authorId:base64url(text).
// publishedAt is stored in UTC with whole-second precision: sub-second parts and
// the original location do not survive a write and re-read.
type ProductCodec struct{}

var _ Codec[model.Product] = ProductCodec{}

// Kind implements Codec.
func (ProductCodec) Kind() string { return "product" }

// Encode implements Codec.
func (c ProductCodec) Encode(p model.Product) (string, error) {
	if err := check(c.Kind(), p); err != nil {
		return "", err
	}
	var published string
	if !p.PublishedAt.IsZero() {
		published = p.PublishedAt.UTC().Format(TimeLayout)
	}
	comments := make([]string, 0, len(p.Comments))
	for _, cm := range p.Comments {
		comments = append(comments, strings.Join([]string{
			cm.ID, cm.AuthorID, textEncoding.EncodeToString([]byte(cm.Text)),
		}, PartSeparator))
	}
	fields := []string{
		p.ID, p.Name, p.Description, published, p.ImagePath,
		strconv.Itoa(p.Price), strconv.Itoa(p.Likes),
		joinList(comments), string(p.Status), string(p.Category),
	}
	return strings.Join(fields, Delimiter), nil
}

// Decode implements Codec.
func (c ProductCodec) Decode(line string) (model.Product, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != productFields {
		return model.Product{}, malformed(c.Kind(), "want %d fields, got %d", productFields, len(fields))
	}
	if fields[0] == "" {
		return model.Product{}, malformed(c.Kind(), "empty id")
	}
	p := model.Product{
		ID:          fields[0],
		Name:        fields[1],
		Description: fields[2],
		ImagePath:   fields[4],
	}
	if fields[3] != "" {
		ts, err := time.Parse(TimeLayout, fields[3])
		if err != nil {
			return model.Product{}, malformed(c.Kind(), "published at: %v", err)
		}
		p.PublishedAt = ts.UTC()
	}
	var err error
	if p.Price, err = strconv.Atoi(fields[5]); err != nil {
		return model.Product{}, malformed(c.Kind(), "price: %v", err)
	}
	if p.Likes, err = strconv.Atoi(fields[6]); err != nil {
		return model.Product{}, malformed(c.Kind(), "likes: %v", err)
	}
	for _, raw := range splitList(fields[7]) {
		parts := strings.SplitN(raw, PartSeparator, 3)
		if len(parts) != 3 || parts[0] == "" {
			return model.Product{}, malformed(c.Kind(), "comment %q", raw)
		}
		text, err := textEncoding.DecodeString(parts[2])
		if err != nil {
			return model.Product{}, malformed(c.Kind(), "comment %s text: %v", parts[0], err)
		}
		p.Comments = append(p.Comments, model.Comment{ID: parts[0], AuthorID: parts[1], Text: string(text)})
	}
	if p.Status, err = model.ParseProductStatus(fields[8]); err != nil {
		return model.Product{}, malformed(c.Kind(), "%v", err)
	}
	if p.Category, err = model.ParseCategory(fields[9]); err != nil {
		return model.Product{}, malformed(c.Kind(), "%v", err)
	}
	if err := decoded(c.Kind(), p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}
