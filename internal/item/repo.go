package item

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"auctionhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Updates carries the optional fields of an item update; nil means
// "leave unchanged".
type Updates struct {
	Title  *string
	Brand  *string
	Model  *string
	Year   *int
	Status *string
}

const itemColumns = `
	item_id, auction_id, title,
	image_url_1, image_url_2, image_url_3, image_url_4, image_url_5,
	brand, model, year, ai_description, status, created_at
`

func (r *Repo) Create(ctx context.Context, it models.Item) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO items (item_id, auction_id, title,
			image_url_1, image_url_2, image_url_3, image_url_4, image_url_5,
			brand, model, year, ai_description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ItemID, it.AuctionID, it.Title,
		it.ImageURL1, it.ImageURL2, it.ImageURL3, it.ImageURL4, it.ImageURL5,
		it.Brand, it.Model, nullableInt(it.Year), it.AIDescription, it.Status)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE item_id = ?
	`, id)

	it, err := scanItem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *Repo) ListByAuction(ctx context.Context, auctionID string) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE auction_id = ?
		ORDER BY created_at DESC
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list items by auction: %w", err)
	}
	return collectItems(rows)
}

// ListByProfile returns every item across all of a profile's auctions.
func (r *Repo) ListByProfile(ctx context.Context, profileID string) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE auction_id IN (SELECT auction_id FROM auctions WHERE profile_id = ?)
		ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list items by profile: %w", err)
	}
	return collectItems(rows)
}

func (r *Repo) Update(ctx context.Context, id string, u Updates) (bool, error) {
	var set []string
	var args []any

	if u.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Brand != nil {
		set = append(set, "brand = ?")
		args = append(args, *u.Brand)
	}
	if u.Model != nil {
		set = append(set, "model = ?")
		args = append(args, *u.Model)
	}
	if u.Year != nil {
		set = append(set, "year = ?")
		args = append(args, *u.Year)
	}
	if u.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *u.Status)
	}
	if len(set) == 0 {
		return false, nil
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE items SET `+strings.Join(set, ", ")+` WHERE item_id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdateImage sets one of the five image slots.
func (r *Repo) UpdateImage(ctx context.Context, id string, slot int, url string) (bool, error) {
	if slot < 1 || slot > 5 {
		return false, fmt.Errorf("image slot must be 1-5, got %d", slot)
	}

	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE items SET image_url_%d = ? WHERE item_id = ?", slot),
		url, id)
	if err != nil {
		return false, fmt.Errorf("update item image: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes the item; its comps go with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM items WHERE item_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanItem(scan func(dest ...any) error) (*models.Item, error) {
	var (
		it      models.Item
		img     [5]sql.NullString
		brand   sql.NullString
		model   sql.NullString
		year    sql.NullInt64
		aiDesc  sql.NullString
		created time.Time
	)

	if err := scan(
		&it.ItemID, &it.AuctionID, &it.Title,
		&img[0], &img[1], &img[2], &img[3], &img[4],
		&brand, &model, &year, &aiDesc, &it.Status, &created,
	); err != nil {
		return nil, err
	}

	it.ImageURL1 = img[0].String
	it.ImageURL2 = img[1].String
	it.ImageURL3 = img[2].String
	it.ImageURL4 = img[3].String
	it.ImageURL5 = img[4].String
	it.Brand = brand.String
	it.Model = model.String
	if year.Valid {
		it.Year = int(year.Int64)
	}
	it.AIDescription = aiDesc.String
	it.CreatedAt = created
	return &it, nil
}

func collectItems(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	out := make([]models.Item, 0, 16)
	for rows.Next() {
		it, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
