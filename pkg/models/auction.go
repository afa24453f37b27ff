package models

import "time"

type Auction struct {
	AuctionID   string    `json:"auction_id"`
	ProfileID   string    `json:"profile_id"`
	AuctionName string    `json:"auction_name"`
	CreatedAt   time.Time `json:"created_at"`
}
