package models

import "time"

// CompRecord is the normalized, internal form of one comparable sale,
// produced by either the HTML extractor or the search agent.
//
// Every field is optional: extraction is best-effort and callers must
// tolerate any combination of absent values.
type CompRecord struct {
	Title          *string  `json:"title"`
	Link           *string  `json:"link"`
	SalePrice      *float64 `json:"sale_price"`
	Currency       *string  `json:"currency"`
	BestOfferPrice *float64 `json:"best_offer_price"`
	ListPrice      *float64 `json:"list_price"`
	CurrentPrice   *float64 `json:"current_price"`
	Bids           *int     `json:"bids"`
	SaleType       *string  `json:"sale_type"`
	DateText       *string  `json:"date_text"` // raw, e.g. "Mon 10 Nov 2025 17:52:42 EST"
	Shipping       *string  `json:"shipping"`
	ImageThumb     *string  `json:"image_thumb"`
	ImageLarge     *string  `json:"image_large"`
	Source         *string  `json:"source"` // e.g. "eBay"
}

// SavedComp mirrors a row of the item_comps table.
type SavedComp struct {
	CompID    string    `json:"comp_id"`
	ItemID    string    `json:"item_id"`
	Source    string    `json:"source,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	SoldPrice float64   `json:"sold_price"`
	Currency  string    `json:"currency"`
	SoldAt    *string   `json:"sold_at"` // YYYY-MM-DD or null
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
