package models

import "time"

type Reaction struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionActivity is one reaction made on a user's product together with
// the product and the user who reacted.
type ReactionActivity struct {
	Product  Product  `json:"product"`
	Reaction Reaction `json:"reaction"`
	User     User     `json:"user"`
}
