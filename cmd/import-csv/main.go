package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"auctionhub/pkg/database"
)

func main() {
	var (
		itemsIn = flag.String("items", "data/items.csv", "input CSV path for items")
		compsIn = flag.String("comps", "data/item_comps.csv", "input CSV path for saved comps")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importItems(ctx, db, *itemsIn); err != nil {
		log.Fatalf("import items failed: %v", err)
	}
	if err := importComps(ctx, db, *compsIn); err != nil {
		log.Fatalf("import comps failed: %v", err)
	}

	log.Printf("✅ imported items from %s and saved comps from %s", *itemsIn, *compsIn)
}

func importItems(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO items (item_id, auction_id, title, brand, model, year, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
		  auction_id = excluded.auction_id,
		  title = excluded.title,
		  brand = excluded.brand,
		  model = excluded.model,
		  year = excluded.year,
		  status = excluded.status
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		itemID := valueAt(header, row, "item_id")
		auctionID := valueAt(header, row, "auction_id")
		title := valueAt(header, row, "title")
		if itemID == "" || auctionID == "" || title == "" {
			continue
		}

		year, err := parseNullInt(valueAt(header, row, "year"))
		if err != nil {
			return fmt.Errorf("parse year for %s: %w", itemID, err)
		}

		status := valueAt(header, row, "status")
		if status == "" {
			status = "active"
		}

		if _, err := stmt.ExecContext(
			ctx,
			itemID,
			auctionID,
			title,
			nullString(valueAt(header, row, "brand")),
			nullString(valueAt(header, row, "model")),
			year,
			status,
		); err != nil {
			return err
		}
	}

	return nil
}

func importComps(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO item_comps (comp_id, item_id, source, source_url, sold_price, currency, sold_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(comp_id) DO UPDATE SET
			source = excluded.source,
			source_url = excluded.source_url,
			sold_price = excluded.sold_price,
			currency = excluded.currency,
			sold_at = excluded.sold_at,
			notes = excluded.notes
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		compID := valueAt(header, row, "comp_id")
		itemID := valueAt(header, row, "item_id")
		if compID == "" || itemID == "" {
			continue
		}

		soldPrice, err := parseFloat(valueAt(header, row, "sold_price"))
		if err != nil {
			return fmt.Errorf("parse sold_price for %s: %w", compID, err)
		}

		currency := valueAt(header, row, "currency")
		if currency == "" {
			currency = "USD"
		}

		if _, err := stmt.ExecContext(
			ctx,
			compID,
			itemID,
			nullString(valueAt(header, row, "source")),
			nullString(valueAt(header, row, "source_url")),
			soldPrice,
			currency,
			nullString(valueAt(header, row, "sold_at")),
			nullString(valueAt(header, row, "notes")),
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
