package comps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MaxBatchSize caps a single batch request.
const MaxBatchSize = 100

var (
	ErrEmptyBatch    = errors.New("items list cannot be empty")
	ErrBatchTooLarge = fmt.Errorf("items list exceeds maximum of %d", MaxBatchSize)
)

// BatchItem is one entry of a batch request, validated at the boundary.
type BatchItem struct {
	ItemID string `json:"item_id" binding:"required"`
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Notes  string `json:"notes"`
}

// ItemOutcome is the per-item result of a batch run.
type ItemOutcome struct {
	ItemID  string       `json:"item_id"`
	Success bool         `json:"success"`
	Comps   *CompsResult `json:"comps,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// BatchResult aggregates a completed batch. BatchID is a diagnostic
// label only: there is no job store to look it up in later.
type BatchResult struct {
	BatchID    string        `json:"batch_id"`
	Status     string        `json:"status"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []ItemOutcome `json:"results"`
}

type compSynthesizer interface {
	Synthesize(ctx context.Context, req CompRequest) (*CompsResult, error)
}

// Orchestrator fans the synthesizer out over a batch of items. Each
// item runs in its own goroutine; one item's failure is captured into
// its outcome and never cancels siblings. The run joins fully before
// returning.
type Orchestrator struct {
	Synth   compSynthesizer
	Adapter *Adapter
}

func NewOrchestrator(synth compSynthesizer, adapter *Adapter) *Orchestrator {
	return &Orchestrator{Synth: synth, Adapter: adapter}
}

// RunBatch validates the batch and runs every item concurrently.
// Validation failures return before any agent call or store write.
func (o *Orchestrator) RunBatch(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(items) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	results := make([]ItemOutcome, len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			results[i] = o.runItem(ctx, item)
		}(i, item)
	}
	wg.Wait()

	res := &BatchResult{
		BatchID: fmt.Sprintf("batch_%d", time.Now().UnixMilli()),
		Status:  "completed",
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			res.Successful++
		} else {
			res.Failed++
		}
	}
	return res, nil
}

func (o *Orchestrator) runItem(ctx context.Context, item BatchItem) (outcome ItemOutcome) {
	outcome.ItemID = item.ItemID

	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Comps = nil
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	result, err := o.Synth.Synthesize(ctx, CompRequest{
		ItemID: item.ItemID,
		Brand:  item.Brand,
		Model:  item.Model,
		Year:   item.Year,
		Notes:  item.Notes,
	})
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	if o.Adapter != nil {
		o.Adapter.PersistAgentComps(ctx, item.ItemID, result)
	}

	outcome.Success = true
	outcome.Comps = result
	return outcome
}
