package model

import "time"

// Message is a single chat line.
type Message struct {
	ID       string
	AuthorID string
	Text     string
	SentAt   time.Time
}

// Chat pairs two sellers with an ordered message history.
// Chats are kept in memory only; no record format exists for them.
type Chat struct {
	First    SellerRef
	Second   SellerRef
	Messages []Message
}

// NewChat opens a chat between two sellers.
func NewChat(first, second *Seller) *Chat {
	return &Chat{
		First:  RefTo(first.ID, first),
		Second: RefTo(second.ID, second),
	}
}

// Involves reports whether sellerID is one of the two participants.
func (c *Chat) Involves(sellerID string) bool {
	return c.First.ID == sellerID || c.Second.ID == sellerID
}

// Send appends m if its author participates in the chat.
func (c *Chat) Send(m Message) bool {
	if !c.Involves(m.AuthorID) {
		return false
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	c.Messages = append(c.Messages, m)
	return true
}

// History returns a copy of the messages in send order.
func (c *Chat) History() []Message {
	return append([]Message(nil), c.Messages...)
}
