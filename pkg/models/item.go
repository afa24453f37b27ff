package models

import "time"

type Item struct {
	ItemID        string    `json:"item_id"`
	AuctionID     string    `json:"auction_id"`
	Title         string    `json:"title"`
	ImageURL1     string    `json:"image_url_1,omitempty"`
	ImageURL2     string    `json:"image_url_2,omitempty"`
	ImageURL3     string    `json:"image_url_3,omitempty"`
	ImageURL4     string    `json:"image_url_4,omitempty"`
	ImageURL5     string    `json:"image_url_5,omitempty"`
	Brand         string    `json:"brand,omitempty"`
	Model         string    `json:"model,omitempty"`
	Year          int       `json:"year,omitempty"`
	AIDescription string    `json:"ai_description,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
