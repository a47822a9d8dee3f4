package snapshot

import "time"

// SellerDoc is the flat snapshot form of a seller; references are IDs only.
type SellerDoc struct {
	ID           string   `json:"id" bson:"id" xml:"id,attr" yaml:"id"`
	Name         string   `json:"name" bson:"name" xml:"name" yaml:"name"`
	Surname      string   `json:"surname" bson:"surname" xml:"surname" yaml:"surname"`
	NationalID   string   `json:"national_id" bson:"national_id" xml:"nationalId" yaml:"national_id"`
	Address      string   `json:"address" bson:"address" xml:"address" yaml:"address"`
	Credential   string   `json:"credential,omitempty" bson:"credential" xml:"credential" yaml:"credential"`
	Publications []string `json:"publications,omitempty" bson:"publications" xml:"publications>product" yaml:"publications,omitempty"`
	Contacts     []string `json:"contacts,omitempty" bson:"contacts" xml:"contacts>seller" yaml:"contacts,omitempty"`
}

// CommentDoc is an embedded product comment.
type CommentDoc struct {
	ID       string `json:"id" bson:"id" xml:"id,attr" yaml:"id"`
	AuthorID string `json:"author_id" bson:"author_id" xml:"author,attr" yaml:"author_id"`
	Text     string `json:"text" bson:"text" xml:",chardata" yaml:"text"`
}

// ProductDoc is the snapshot form of a product.
type ProductDoc struct {
	ID          string       `json:"id" bson:"id" xml:"id,attr" yaml:"id"`
	Name        string       `json:"name" bson:"name" xml:"name" yaml:"name"`
	Description string       `json:"description" bson:"description" xml:"description" yaml:"description"`
	PublishedAt time.Time    `json:"published_at" bson:"published_at" xml:"publishedAt" yaml:"published_at"`
	ImagePath   string       `json:"image_path" bson:"image_path" xml:"imagePath" yaml:"image_path"`
	Price       int          `json:"price" bson:"price" xml:"price" yaml:"price"`
	Likes       int          `json:"likes" bson:"likes" xml:"likes" yaml:"likes"`
	Comments    []CommentDoc `json:"comments,omitempty" bson:"comments" xml:"comments>comment" yaml:"comments,omitempty"`
	Status      string       `json:"status" bson:"status" xml:"status" yaml:"status"`
	Category    string       `json:"category" bson:"category" xml:"category" yaml:"category"`
}

// RequestDoc is the snapshot form of a contact request.
type RequestDoc struct {
	ID         string `json:"id" bson:"id" xml:"id,attr" yaml:"id"`
	SenderID   string `json:"sender_id" bson:"sender_id" xml:"sender" yaml:"sender_id"`
	ReceiverID string `json:"receiver_id" bson:"receiver_id" xml:"receiver" yaml:"receiver_id"`
	Status     string `json:"status" bson:"status" xml:"status" yaml:"status"`
}
