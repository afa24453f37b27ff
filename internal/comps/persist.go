package comps

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"auctionhub/pkg/models"
)

// compInserter is the slice of the store the adapter needs.
type compInserter interface {
	Insert(ctx context.Context, comp models.SavedComp) error
}

// PersistOutcome records what happened to one comp during persistence.
// The main response never depends on these; they exist so failures are
// explicit diagnostics instead of swallowed exceptions.
type PersistOutcome struct {
	Source  string
	Saved   bool
	Skipped bool
	Err     error
}

// Adapter maps comp records from either retrieval path into item_comps
// rows, best-effort: unparseable prices become 0, unparseable dates
// become null, and a failed insert never blocks sibling comps.
type Adapter struct {
	Store compInserter
}

func NewAdapter(store compInserter) *Adapter {
	return &Adapter{Store: store}
}

var (
	reFullDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reYearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// NormalizeSoldDate reduces a raw date string to the strict form the
// store accepts: YYYY-MM-DD verbatim, bare YYYY-MM coerced to day 01,
// anything else (including "unknown"/"null" sentinels) to null.
func NormalizeSoldDate(s string) *string {
	s = strings.TrimSpace(s)
	switch {
	case reFullDate.MatchString(s):
		return &s
	case reYearMonth.MatchString(s):
		d := s + "-01"
		return &d
	default:
		return nil
	}
}

// PersistRecords stores up to max extractor records for the item and
// returns per-comp diagnostics.
func (a *Adapter) PersistRecords(ctx context.Context, itemID string, recs []models.CompRecord, max int) []PersistOutcome {
	out := make([]PersistOutcome, 0, len(recs))
	saved := 0

	for _, rec := range recs {
		if max > 0 && saved >= max {
			break
		}
		outcome := a.persist(ctx, savedFromRecord(itemID, rec))
		if outcome.Saved {
			saved++
		}
		out = append(out, outcome)
	}
	return out
}

// PersistAgentComps stores the valid slots of a synthesizer result.
func (a *Adapter) PersistAgentComps(ctx context.Context, itemID string, result *CompsResult) []PersistOutcome {
	out := make([]PersistOutcome, 0, 3)
	for _, c := range result.Comps() {
		out = append(out, a.persist(ctx, models.SavedComp{
			ItemID:    itemID,
			Source:    strings.TrimSpace(c.Source),
			SourceURL: c.URL,
			SoldPrice: c.Price,
			Currency:  "USD",
			SoldAt:    NormalizeSoldDate(c.SaleDate),
			Notes:     c.Notes,
		}))
	}
	return out
}

func (a *Adapter) persist(ctx context.Context, comp models.SavedComp) PersistOutcome {
	// "none" marks an unfilled agent slot: surfaced, never stored
	if comp.Source == "" || strings.EqualFold(comp.Source, SourceNone) {
		return PersistOutcome{Source: comp.Source, Skipped: true}
	}

	comp.CompID = uuid.NewString()
	if comp.Currency == "" {
		comp.Currency = "USD"
	}

	if err := a.Store.Insert(ctx, comp); err != nil {
		log.Printf("[comps] persist comp for item %s failed: %v", comp.ItemID, err)
		return PersistOutcome{Source: comp.Source, Err: err}
	}
	return PersistOutcome{Source: comp.Source, Saved: true}
}

func savedFromRecord(itemID string, rec models.CompRecord) models.SavedComp {
	comp := models.SavedComp{
		ItemID:   itemID,
		Currency: "USD",
	}
	if rec.Source != nil {
		comp.Source = *rec.Source
	}
	if rec.Link != nil {
		comp.SourceURL = *rec.Link
	}
	if rec.SalePrice != nil {
		comp.SoldPrice = *rec.SalePrice
	}
	if rec.Currency != nil && *rec.Currency != "" {
		comp.Currency = *rec.Currency
	}
	if rec.DateText != nil {
		comp.SoldAt = NormalizeSoldDate(*rec.DateText)
	}
	if rec.Title != nil {
		comp.Notes = *rec.Title
	}
	return comp
}
