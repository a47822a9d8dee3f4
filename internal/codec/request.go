package codec

import (
	"strings"

	"github.com/and161185/marketstore/internal/model"
)

// RequestCodec encodes requests as id%senderId%receiverId%STATUS.
type RequestCodec struct{}

var _ Codec[model.Request] = RequestCodec{}

// Kind implements Codec.
func (RequestCodec) Kind() string { return "request" }

// Encode implements Codec. An absent party encodes as an empty field.
func (c RequestCodec) Encode(r model.Request) (string, error) {
	if err := check(c.Kind(), r); err != nil {
		return "", err
	}
	return strings.Join([]string{r.ID, r.Sender.ID, r.Receiver.ID, string(r.Status)}, Delimiter), nil
}

// Decode implements Codec.
func (c RequestCodec) Decode(line string) (model.Request, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != 4 {
		return model.Request{}, malformed(c.Kind(), "want 4 fields, got %d", len(fields))
	}
	if fields[0] == "" {
		return model.Request{}, malformed(c.Kind(), "empty id")
	}
	st, err := model.ParseRequestStatus(fields[3])
	if err != nil {
		return model.Request{}, malformed(c.Kind(), "%v", err)
	}
	r := model.Request{
		ID:       fields[0],
		Sender:   model.SellerRef{ID: fields[1]},
		Receiver: model.SellerRef{ID: fields[2]},
		Status:   st,
	}
	if err := decoded(c.Kind(), r); err != nil {
		return model.Request{}, err
	}
	return r, nil
}
