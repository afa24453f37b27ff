package comps

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auctionhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Insert(ctx context.Context, comp models.SavedComp) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO item_comps (comp_id, item_id, source, source_url, sold_price, currency, sold_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, comp.CompID, comp.ItemID, comp.Source, comp.SourceURL, comp.SoldPrice, comp.Currency, comp.SoldAt, comp.Notes)
	if err != nil {
		return fmt.Errorf("insert comp: %w", err)
	}
	return nil
}

func (r *Repo) ListByItem(ctx context.Context, itemID string) ([]models.SavedComp, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT comp_id, item_id, source, source_url, sold_price, currency, sold_at, notes, created_at
		FROM item_comps
		WHERE item_id = ?
		ORDER BY created_at DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list comps: %w", err)
	}
	defer rows.Close()

	out := make([]models.SavedComp, 0, 8)
	for rows.Next() {
		var (
			c         models.SavedComp
			source    sql.NullString
			sourceURL sql.NullString
			soldAt    sql.NullString
			notes     sql.NullString
			created   time.Time
		)
		if err := rows.Scan(&c.CompID, &c.ItemID, &source, &sourceURL, &c.SoldPrice, &c.Currency, &soldAt, &notes, &created); err != nil {
			return nil, fmt.Errorf("scan comp row: %w", err)
		}
		c.Source = source.String
		c.SourceURL = sourceURL.String
		if soldAt.Valid {
			c.SoldAt = &soldAt.String
		}
		c.Notes = notes.String
		c.CreatedAt = created
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
