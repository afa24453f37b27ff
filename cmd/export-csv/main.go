package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"auctionhub/pkg/database"
)

func main() {
	var (
		itemsOut = flag.String("items", "data/items.csv", "output CSV path for items")
		compsOut = flag.String("comps", "data/item_comps.csv", "output CSV path for saved comps")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportItems(ctx, db, *itemsOut); err != nil {
		log.Fatalf("export items failed: %v", err)
	}
	if err := exportComps(ctx, db, *compsOut); err != nil {
		log.Fatalf("export comps failed: %v", err)
	}

	log.Printf("✅ exported items to %s and saved comps to %s", *itemsOut, *compsOut)
}

func exportItems(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"item_id", "auction_id", "title", "brand", "model", "year", "status"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT item_id, auction_id, title, brand, model, year, status
        FROM items
        ORDER BY title
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID    string
			auctionID string
			title     string
			brand     sql.NullString
			model     sql.NullString
			year      sql.NullInt64
			status    sql.NullString
		)

		if err := rows.Scan(&itemID, &auctionID, &title, &brand, &model, &year, &status); err != nil {
			return err
		}

		yearStr := ""
		if year.Valid {
			yearStr = strconv.FormatInt(year.Int64, 10)
		}

		if err := w.Write([]string{
			itemID,
			auctionID,
			title,
			brand.String,
			model.String,
			yearStr,
			status.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportComps(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"comp_id", "item_id", "source", "source_url", "sold_price", "currency", "sold_at", "notes", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT comp_id, item_id, source, source_url, sold_price, currency, sold_at, notes, created_at
        FROM item_comps
        ORDER BY created_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			compID    string
			itemID    string
			source    sql.NullString
			sourceURL sql.NullString
			soldPrice float64
			currency  sql.NullString
			soldAt    sql.NullString
			notes     sql.NullString
			createdAt sql.NullTime
		)

		if err := rows.Scan(&compID, &itemID, &source, &sourceURL, &soldPrice, &currency, &soldAt, &notes, &createdAt); err != nil {
			return err
		}

		created := ""
		if createdAt.Valid {
			created = createdAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{
			compID,
			itemID,
			source.String,
			sourceURL.String,
			strconv.FormatFloat(soldPrice, 'f', 2, 64),
			currency.String,
			soldAt.String,
			notes.String,
			created,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
