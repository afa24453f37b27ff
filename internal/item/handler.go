package item

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auctionhub/internal/auction"
	"auctionhub/pkg/models"
)

// Describer turns an uploaded photo plus item metadata into a marketing
// description. Satisfied by llm.Client; nil when no API key is configured.
type Describer interface {
	DescribeItem(ctx context.Context, image []byte, mimeType, title, model, year, notes string) (string, error)
}

const maxImageBytes = 8 << 20

type Handler struct {
	Repo      *Repo
	Auctions  *auction.Repo
	Describer Describer
}

func NewHandler(repo *Repo, auctions *auction.Repo, describer Describer) *Handler {
	return &Handler{Repo: repo, Auctions: auctions, Describer: describer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/items", h.create)
	rg.GET("/items", h.list)
	rg.GET("/items/:item_id", h.getByID)
	rg.PUT("/items/:item_id", h.update)
	rg.DELETE("/items/:item_id", h.remove)
	rg.PUT("/items/:item_id/images/:image_id", h.updateImage)
	rg.POST("/items/generate-description", h.generateDescription)
}

// The frontend sends creates/updates as query parameters.
func (h *Handler) create(c *gin.Context) {
	auctionID := strings.TrimSpace(c.Query("auction_id"))
	title := strings.TrimSpace(c.Query("title"))
	if auctionID == "" || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auction_id and title are required"})
		return
	}

	a, err := h.Auctions.GetByID(c.Request.Context(), auctionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auction lookup failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("auction %s not found", auctionID)})
		return
	}

	it := models.Item{
		ItemID:        uuid.NewString(),
		AuctionID:     auctionID,
		Title:         title,
		ImageURL1:     c.Query("image_url_1"),
		ImageURL2:     c.Query("image_url_2"),
		ImageURL3:     c.Query("image_url_3"),
		ImageURL4:     c.Query("image_url_4"),
		ImageURL5:     c.Query("image_url_5"),
		Brand:         c.Query("brand"),
		Model:         c.Query("model"),
		AIDescription: c.Query("ai_description"),
		Status:        "active",
	}
	if y := c.Query("year"); y != "" {
		if n, err := strconv.Atoi(y); err == nil {
			it.Year = n
		}
	}

	if err := h.Repo.Create(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create item failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), it.ItemID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create item failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	auctionID := c.Query("auction_id")
	profileID := c.Query("profile_id")

	var (
		items []models.Item
		err   error
	)
	switch {
	case auctionID != "":
		items, err = h.Repo.ListByAuction(c.Request.Context(), auctionID)
	case profileID != "":
		items, err = h.Repo.ListByProfile(c.Request.Context(), profileID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "auction_id or profile_id is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list items failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("item_id")
	it, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get item failed"})
		return
	}
	if it == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("item_id")

	var u Updates
	if v, ok := c.GetQuery("title"); ok {
		u.Title = &v
	}
	if v, ok := c.GetQuery("brand"); ok {
		u.Brand = &v
	}
	if v, ok := c.GetQuery("model"); ok {
		u.Model = &v
	}
	if v, ok := c.GetQuery("year"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			u.Year = &n
		}
	}
	if v, ok := c.GetQuery("status"); ok {
		u.Status = &v
	}

	updated, err := h.Repo.Update(c.Request.Context(), id, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update item failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", id)})
		return
	}

	it, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || it == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update item failed"})
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("item_id")
	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete item failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) updateImage(c *gin.Context) {
	id := c.Param("item_id")
	slot, err := strconv.Atoi(c.Param("image_id"))
	if err != nil || slot < 1 || slot > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_id must be 1-5"})
		return
	}
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	updated, err := h.Repo.UpdateImage(c.Request.Context(), id, slot, url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update image failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("item %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": id, "image_id": slot, "url": url})
}

// generateDescription accepts a multipart image plus item metadata and
// returns an LLM-written marketing description.
func (h *Handler) generateDescription(c *gin.Context) {
	if h.Describer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "description generation is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read image failed"})
		return
	}
	if len(image) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds 8MB limit"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	title := c.PostForm("title")
	if strings.TrimSpace(title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	desc, err := h.Describer.DescribeItem(
		c.Request.Context(), image, mimeType,
		title, c.PostForm("model"), c.PostForm("year"), c.PostForm("notes"),
	)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "description generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"description": desc})
}
