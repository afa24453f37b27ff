package comps

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAgent returns its replies in order, recording every call.
type scriptedAgent struct {
	replies []string
	errs    []error
	calls   int
}

func (a *scriptedAgent) FindComps(ctx context.Context, instructions string) (string, error) {
	idx := a.calls
	a.calls++
	if idx >= len(a.replies) {
		idx = len(a.replies) - 1
	}
	if a.errs != nil && a.errs[idx] != nil {
		return "", a.errs[idx]
	}
	return a.replies[idx], nil
}

func fixedYear(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func validReply(year int) string {
	return fmt.Sprintf(`Here are the comps you asked for:
{"comp_1": {"source": "eBay", "url": "https://www.ebay.com/itm/1", "sale_date": "%d-03-12", "price": 450, "notes": "mint"},
 "comp_2": {"source": "Heritage Auctions", "url": "https://ha.com/lot/2", "sale_date": "%d-05-01", "price": 510, "notes": ""},
 "comp_3": {"source": "Catawiki", "url": "https://catawiki.com/l/3", "sale_date": "%d-06-02", "price": 480, "notes": "box and papers"}}`,
		year, year, year)
}

func partialReply(year int) string {
	return fmt.Sprintf(`{"comp_1": {"source": "eBay", "url": "https://www.ebay.com/itm/1", "sale_date": "%d-03-12", "price": 450, "notes": ""},
 "comp_2": {"source": "Sotheby's", "url": "https://sothebys.com/l/2", "sale_date": "%d-01-09", "price": 900, "notes": ""},
 "comp_3": {"source": "none", "url": "", "sale_date": "", "price": 0, "notes": "no third sale found"}}`,
		year, year)
}

func TestSynthesizeFirstAttemptSuccess(t *testing.T) {
	agent := &scriptedAgent{replies: []string{validReply(2025)}}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1", Brand: "Rolex", Model: "Submariner"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, agent.calls, "all comps valid on the first attempt, no retries")
	assert.Equal(t, "eBay", result.Comp1.Source)
	assert.Equal(t, "Heritage Auctions", result.Comp2.Source)
	assert.Equal(t, 480.0, result.Comp3.Price)
}

func TestSynthesizeFallsBackToLastAttempt(t *testing.T) {
	agent := &scriptedAgent{replies: []string{
		partialReply(2025),
		partialReply(2025),
		partialReply(2025),
	}}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1", Brand: "Omega"})
	require.NoError(t, err, "exhausted retries surface the last output, not an error")
	require.NotNil(t, result)

	assert.Equal(t, 3, agent.calls)
	assert.Equal(t, SourceNone, result.Comp3.Source, "partial result is surfaced as-is")
}

func TestSynthesizeMalformedFinalAttemptKeepsEarlierOutput(t *testing.T) {
	agent := &scriptedAgent{replies: []string{
		partialReply(2025),
		"the search tool returned nothing I could use",
		"still nothing",
	}}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, agent.calls)
	assert.Equal(t, "eBay", result.Comp1.Source, "attempt 1's parseable output survives malformed later attempts")
	assert.Equal(t, SourceNone, result.Comp3.Source)
}

func TestSynthesizeRetriesPastMalformedOutput(t *testing.T) {
	agent := &scriptedAgent{replies: []string{
		"sorry, I could not find anything useful",
		validReply(2025),
	}}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, agent.calls)
}

func TestSynthesizeStaleDatesRejected(t *testing.T) {
	// comps dated last year never validate; all attempts run, last output returned
	agent := &scriptedAgent{replies: []string{validReply(2024)}}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, agent.calls)
}

func TestSynthesizeAllAttemptsFail(t *testing.T) {
	boom := errors.New("agent unreachable")
	agent := &scriptedAgent{
		replies: []string{"", "", ""},
		errs:    []error{boom, boom, boom},
	}
	s := NewSynthesizer(agent)
	s.Now = fixedYear(2025)

	result, err := s.Synthesize(context.Background(), CompRequest{ItemID: "item-1"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}

func TestCompValid(t *testing.T) {
	tests := []struct {
		name string
		comp AgentComp
		want bool
	}{
		{"current year and real source", AgentComp{Source: "eBay", SaleDate: "2025-04-01"}, true},
		{"previous year", AgentComp{Source: "eBay", SaleDate: "2024-12-31"}, false},
		{"none sentinel", AgentComp{Source: "none", SaleDate: "2025-04-01"}, false},
		{"none sentinel uppercase", AgentComp{Source: "None", SaleDate: "2025-04-01"}, false},
		{"empty source", AgentComp{Source: "", SaleDate: "2025-04-01"}, false},
		{"empty date", AgentComp{Source: "eBay", SaleDate: ""}, false},
		{"year prefix without full date", AgentComp{Source: "eBay", SaleDate: "2025"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compValid(tt.comp, 2025))
		})
	}
}

func TestBuildInstructionsMentionsConstraints(t *testing.T) {
	s := NewSynthesizer(nil)
	got := s.buildInstructions(CompRequest{ItemID: "i", Brand: "Rolex", Model: "GMT", Year: 1998, Notes: "blue dial"}, 2025)

	assert.Contains(t, got, "Rolex GMT 1998")
	assert.Contains(t, got, "blue dial")
	assert.Contains(t, got, "2025")
	assert.Contains(t, got, "DIFFERENT marketplaces")
	assert.Contains(t, got, `"comp_1"`)
	assert.Contains(t, got, SourceNone)
}
