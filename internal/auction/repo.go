package auction

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

func (r *Repo) Create(ctx context.Context, a models.Auction) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO auctions (auction_id, profile_id, auction_name)
		VALUES (?, ?, ?)
	`, a.AuctionID, a.ProfileID, a.AuctionName)
	if err != nil {
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT auction_id, profile_id, auction_name, created_at
		FROM auctions WHERE auction_id = ?
	`, id)

	var (
		a       models.Auction
		created time.Time
	)
	if err := row.Scan(&a.AuctionID, &a.ProfileID, &a.AuctionName, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get auction: %w", err)
	}
	a.CreatedAt = created
	return &a, nil
}

func (r *Repo) ListByProfile(ctx context.Context, profileID string) ([]models.Auction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT auction_id, profile_id, auction_name, created_at
		FROM auctions
		WHERE profile_id = ?
		ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Auction, 0, 8)
	for rows.Next() {
		var (
			a       models.Auction
			created time.Time
		)
		if err := rows.Scan(&a.AuctionID, &a.ProfileID, &a.AuctionName, &created); err != nil {
			return nil, fmt.Errorf("scan auction row: %w", err)
		}
		a.CreatedAt = created
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Rename(ctx context.Context, id, name string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE auctions SET auction_name = ? WHERE auction_id = ?
	`, name, id)
	if err != nil {
		return false, fmt.Errorf("rename auction: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes the auction; items and their comps cascade.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM auctions WHERE auction_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete auction: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
