package comps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"auctionhub/pkg/models"
)

// itemGetter is the slice of the item store the handler needs for
// existence checks and query building.
type itemGetter interface {
	GetByID(ctx context.Context, id string) (*models.Item, error)
}

type Handler struct {
	Extractor *Extractor
	Synth     *Synthesizer
	Orch      *Orchestrator
	Adapter   *Adapter
	Repo      *Repo
	Items     itemGetter

	// MaxSaved caps how many extractor results are persisted per fetch.
	MaxSaved int
}

func NewHandler(extractor *Extractor, synth *Synthesizer, adapter *Adapter, repo *Repo, items itemGetter, maxSaved int) *Handler {
	if maxSaved <= 0 {
		maxSaved = 3
	}
	return &Handler{
		Extractor: extractor,
		Synth:     synth,
		Orch:      NewOrchestrator(synth, adapter),
		Adapter:   adapter,
		Repo:      repo,
		Items:     items,
		MaxSaved:  maxSaved,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items/:item_id/comps", h.fetchComps)
	rg.GET("/items/:item_id/comps/saved", h.savedComps)
	rg.POST("/comps", h.synthesizeComps)
	rg.POST("/comps/batch", h.batchComps)
}

// fetchComps scrapes the comp search backend for one item, persists up
// to MaxSaved results and returns everything that was fetched.
func (h *Handler) fetchComps(c *gin.Context) {
	itemID := c.Param("item_id")
	item, err := h.Items.GetByID(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "item lookup failed"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", itemID)})
		return
	}

	limit := parseInt(c.Query("limit"), 10)
	if limit <= 0 {
		limit = 10
	}

	rawHTML, err := h.Extractor.FetchHTML(c.Request.Context(), SearchQuery{Query: searchQueryForItem(item)})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": fe.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "comp search unavailable"})
		return
	}

	records := ParseComps(rawHTML)
	outcomes := h.Adapter.PersistRecords(c.Request.Context(), itemID, records, h.MaxSaved)

	saved := 0
	for _, o := range outcomes {
		if o.Saved {
			saved++
		}
	}

	total := len(records)
	if total > limit {
		records = records[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":     itemID,
		"comps":       records,
		"total_found": total,
		"saved":       saved,
	})
}

// savedComps returns previously persisted comps, reshaped into the
// extractor's field names so both endpoints look alike to the frontend.
func (h *Handler) savedComps(c *gin.Context) {
	itemID := c.Param("item_id")
	item, err := h.Items.GetByID(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "item lookup failed"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", itemID)})
		return
	}

	saved, err := h.Repo.ListByItem(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list comps failed"})
		return
	}

	comps := make([]gin.H, 0, len(saved))
	for _, s := range saved {
		comps = append(comps, gin.H{
			"source":     s.Source,
			"link":       s.SourceURL,
			"sale_price": s.SoldPrice,
			"currency":   s.Currency,
			"date_text":  s.SoldAt,
			"title":      s.Notes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id": itemID,
		"comps":   comps,
		"count":   len(comps),
	})
}

// synthesizeComps runs the search agent for one item and persists the
// valid comps it returns.
func (h *Handler) synthesizeComps(c *gin.Context) {
	var req CompRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	item, err := h.Items.GetByID(c.Request.Context(), req.ItemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "item lookup failed"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", req.ItemID)})
		return
	}

	// fill blanks from the stored item so callers can send item_id alone
	if req.Brand == "" {
		req.Brand = item.Brand
	}
	if req.Model == "" {
		req.Model = item.Model
	}
	if req.Year == 0 {
		req.Year = item.Year
	}

	result, err := h.Synth.Synthesize(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	outcomes := h.Adapter.PersistAgentComps(c.Request.Context(), req.ItemID, result)
	saved := 0
	for _, o := range outcomes {
		if o.Saved {
			saved++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id": req.ItemID,
		"comps":   result,
		"saved":   saved,
	})
}

type batchReq struct {
	Items []BatchItem `json:"items"`
}

func (h *Handler) batchComps(c *gin.Context) {
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, err := h.Orch.RunBatch(c.Request.Context(), req.Items)
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func searchQueryForItem(item *models.Item) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{item.Brand, item.Model} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	if item.Year > 0 {
		parts = append(parts, strconv.Itoa(item.Year))
	}
	if len(parts) == 0 {
		return item.Title
	}
	return strings.Join(parts, " ")
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
