package comps

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhub/pkg/models"
)

// fakeStore collects inserts and can fail on selected sources. The
// mutex matters for the batch tests, which insert from many goroutines.
type fakeStore struct {
	mu       sync.Mutex
	inserted []models.SavedComp
	failOn   map[string]error
}

func (s *fakeStore) Insert(ctx context.Context, comp models.SavedComp) error {
	if err := s.failOn[comp.Source]; err != nil {
		return err
	}
	s.mu.Lock()
	s.inserted = append(s.inserted, comp)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) insertedComps() []models.SavedComp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SavedComp(nil), s.inserted...)
}

func TestNormalizeSoldDate(t *testing.T) {
	tests := []struct {
		raw  string
		want *string
	}{
		{"2025-03-12", str("2025-03-12")},
		{"2025-03", str("2025-03-01")},
		{" 2025-03-12 ", str("2025-03-12")},
		{"Mon 10 Nov 2025 17:52:42 EST", nil},
		{"unknown", nil},
		{"null", nil},
		{"2025", nil},
		{"2025-3-12", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := NormalizeSoldDate(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "NormalizeSoldDate(%q)", tt.raw)
			continue
		}
		require.NotNil(t, got, "NormalizeSoldDate(%q)", tt.raw)
		assert.Equal(t, *tt.want, *got, "NormalizeSoldDate(%q)", tt.raw)
	}
}

func TestPersistRecordsDefaults(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store)

	recs := []models.CompRecord{
		{
			Source:    str("eBay"),
			Link:      str("https://www.ebay.com/itm/1"),
			SalePrice: nil, // unparseable upstream: stored as 0, never rejected
			DateText:  str("Mon 10 Nov 2025 17:52:42 EST"),
			Title:     str("Rolex Submariner"),
		},
	}

	outcomes := a.PersistRecords(context.Background(), "item-1", recs, 3)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Saved)

	require.Len(t, store.inserted, 1)
	saved := store.inserted[0]
	assert.Equal(t, "item-1", saved.ItemID)
	assert.Equal(t, 0.0, saved.SoldPrice)
	assert.Equal(t, "USD", saved.Currency)
	assert.Nil(t, saved.SoldAt, "free-text date is stored as null")
	assert.Equal(t, "Rolex Submariner", saved.Notes)
	assert.NotEmpty(t, saved.CompID)
}

func TestPersistRecordsRespectsMax(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store)

	recs := make([]models.CompRecord, 5)
	for i := range recs {
		recs[i] = models.CompRecord{Source: str("eBay")}
	}

	a.PersistRecords(context.Background(), "item-1", recs, 3)
	assert.Len(t, store.inserted, 3)
}

func TestPersistSkipsNoneSource(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store)

	result := &CompsResult{
		Comp1: AgentComp{Source: "eBay", URL: "https://www.ebay.com/itm/1", SaleDate: "2025-03-12", Price: 450},
		Comp2: AgentComp{Source: "none", SaleDate: "", Price: 0},
		Comp3: AgentComp{Source: "None", SaleDate: "2025-04", Price: 100},
	}

	outcomes := a.PersistAgentComps(context.Background(), "item-1", result)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Saved)
	assert.True(t, outcomes[1].Skipped)
	assert.True(t, outcomes[2].Skipped, "sentinel match is case-insensitive")

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "eBay", store.inserted[0].Source)
	require.NotNil(t, store.inserted[0].SoldAt)
	assert.Equal(t, "2025-03-12", *store.inserted[0].SoldAt)
}

func TestPersistIsolatesStoreFailures(t *testing.T) {
	boom := errors.New("disk full")
	store := &fakeStore{failOn: map[string]error{"Heritage Auctions": boom}}
	a := NewAdapter(store)

	result := &CompsResult{
		Comp1: AgentComp{Source: "eBay", SaleDate: "2025-01-01", Price: 10},
		Comp2: AgentComp{Source: "Heritage Auctions", SaleDate: "2025-02-02", Price: 20},
		Comp3: AgentComp{Source: "Catawiki", SaleDate: "2025-03-03", Price: 30},
	}

	outcomes := a.PersistAgentComps(context.Background(), "item-1", result)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Saved)
	assert.False(t, outcomes[1].Saved)
	assert.ErrorIs(t, outcomes[1].Err, boom)
	assert.True(t, outcomes[2].Saved, "a failed insert never blocks sibling comps")

	assert.Len(t, store.inserted, 2)
}

func TestPersistAgentCompCoercesYearMonth(t *testing.T) {
	store := &fakeStore{}
	a := NewAdapter(store)

	result := &CompsResult{
		Comp1: AgentComp{Source: "eBay", SaleDate: "2025-07", Price: 80},
		Comp2: AgentComp{Source: "none"},
		Comp3: AgentComp{Source: "none"},
	}

	a.PersistAgentComps(context.Background(), "item-1", result)
	require.Len(t, store.inserted, 1)
	require.NotNil(t, store.inserted[0].SoldAt)
	assert.Equal(t, "2025-07-01", *store.inserted[0].SoldAt)
}

func str(s string) *string { return &s }
