package comps

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// SourceNone is the sentinel the agent uses for a slot it could not fill.
// Comps with this source are surfaced to the caller but never persisted.
const SourceNone = "none"

// Agent is the search-capable LLM the synthesizer drives. It receives
// natural-language instructions and returns the raw reply text.
type Agent interface {
	FindComps(ctx context.Context, instructions string) (string, error)
}

// CompRequest identifies the item to find comps for.
type CompRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Notes  string `json:"notes"`
}

// AgentComp is one comp slot of the agent's structured output.
type AgentComp struct {
	Source   string  `json:"source"`
	URL      string  `json:"url"`
	SaleDate string  `json:"sale_date"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes"`
}

// CompsResult is the agent's three labeled comp slots.
type CompsResult struct {
	Comp1 AgentComp `json:"comp_1"`
	Comp2 AgentComp `json:"comp_2"`
	Comp3 AgentComp `json:"comp_3"`
}

// Comps returns the three slots in labeled order.
func (r *CompsResult) Comps() [3]AgentComp {
	return [3]AgentComp{r.Comp1, r.Comp2, r.Comp3}
}

// Synthesizer retries the agent until it produces three valid comps, up
// to a bounded attempt count. If no attempt fully validates, the last
// parseable attempt's output is returned as-is: partial results are
// surfaced to the caller rather than discarded.
type Synthesizer struct {
	Agent       Agent
	MaxAttempts int

	// Now is the clock used for the current-year validation window;
	// overridable in tests.
	Now func() time.Time
}

func NewSynthesizer(agent Agent) *Synthesizer {
	return &Synthesizer{
		Agent:       agent,
		MaxAttempts: 3,
		Now:         time.Now,
	}
}

// Synthesize asks the agent for three comps and validates each attempt.
// An error is returned only when every attempt failed outright (transport
// or unparseable output); otherwise the best-effort result is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, req CompRequest) (*CompsResult, error) {
	year := s.Now().Year()
	instructions := s.buildInstructions(req, year)

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var last *CompsResult
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := s.Agent.FindComps(ctx, instructions)
		if err != nil {
			lastErr = err
			log.Printf("[comps] agent attempt %d/%d failed: %v", attempt, attempts, err)
			continue
		}

		result, err := parseAgentResult(text)
		if err != nil {
			lastErr = err
			log.Printf("[comps] agent attempt %d/%d returned malformed output: %v", attempt, attempts, err)
			continue
		}

		last = result
		if allValid(result, year) {
			return result, nil
		}
		log.Printf("[comps] agent attempt %d/%d returned incomplete comps, retrying", attempt, attempts)
	}

	if last != nil {
		// best-effort fallback: the last PARSEABLE attempt wins. A
		// malformed final attempt never erases an earlier usable one.
		return last, nil
	}
	return nil, fmt.Errorf("comp synthesis failed after %d attempts: %w", attempts, lastErr)
}

func (s *Synthesizer) buildInstructions(req CompRequest, year int) string {
	desc := strings.TrimSpace(strings.Join(nonEmpty(req.Brand, req.Model, yearString(req.Year)), " "))
	if desc == "" {
		desc = "the item described in the notes"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Find exactly 3 comparable SOLD listings for: %s.\n", desc)
	if req.Notes != "" {
		fmt.Fprintf(&sb, "Additional item details: %s\n", req.Notes)
	}
	fmt.Fprintf(&sb, `
Requirements:
- Only listings that actually SOLD (not active or unsold listings).
- Sale dates must be within %d. Reject anything older.
- The 3 comps must come from 3 DIFFERENT marketplaces (e.g. eBay, Heritage Auctions, Sotheby's, Catawiki, LiveAuctioneers).
- Each url must be a syntactically valid absolute URL to the original listing.
- Search strategy: vary your query terms (brand, model, year, synonyms) and check multiple result pages before giving up on a marketplace.

Respond with ONLY a JSON object of this exact shape:
{"comp_1": {"source": "...", "url": "...", "sale_date": "YYYY-MM-DD", "price": 0, "notes": "..."},
 "comp_2": {...}, "comp_3": {...}}

If you cannot find a sale for a slot, set its "source" to "%s".
`, year, SourceNone)
	return sb.String()
}

// parseAgentResult extracts the JSON object from the agent's reply text.
// Search-grounded replies often wrap JSON in prose or a code fence.
func parseAgentResult(text string) (*CompsResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in agent reply")
	}

	var result CompsResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode agent reply: %w", err)
	}
	return &result, nil
}

// compValid reports whether a single comp passes acceptance: sale_date
// starts with the current four-digit year and the source is a real
// marketplace (not the "none" sentinel).
func compValid(c AgentComp, year int) bool {
	if !strings.HasPrefix(c.SaleDate, strconv.Itoa(year)) {
		return false
	}
	if c.Source == "" || strings.EqualFold(c.Source, SourceNone) {
		return false
	}
	return true
}

func allValid(r *CompsResult, year int) bool {
	for _, c := range r.Comps() {
		if !compValid(c, year) {
			return false
		}
	}
	return true
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func yearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
