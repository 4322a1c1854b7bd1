package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        int64     `json:"id"`
	UUID      uuid.UUID `json:"uuid"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Simple    string    `json:"simple"`
	Img       string    `json:"img"`
	Duration  int32     `json:"duration"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductInput holds the user-editable fields of a product.
type ProductInput struct {
	Title    string
	Body     string
	Simple   string
	Img      string
	Duration int32
	Kind     string
	Status   string
	TagIDs   []int64
}

// ProductDetail is a product with its tag ids, reactions and, where the
// listing needs it, its author.
type ProductDetail struct {
	Product
	TagIDs    []int64    `json:"tag_ids"`
	Reactions []Reaction `json:"reactions"`
	User      *User      `json:"user,omitempty"`
}
