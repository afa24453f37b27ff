package auction

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auctionhub/internal/profile"
	"auctionhub/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Profiles *profile.Repo
}

func NewHandler(repo *Repo, profiles *profile.Repo) *Handler {
	return &Handler{Repo: repo, Profiles: profiles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auctions", h.create)
	rg.GET("/auctions", h.listByProfile)
	rg.GET("/auctions/:auction_id", h.getByID)
	rg.PUT("/auctions/:auction_id", h.rename)
	rg.DELETE("/auctions/:auction_id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	profileID := strings.TrimSpace(c.Query("profile_id"))
	name := strings.TrimSpace(c.Query("auction_name"))
	if profileID == "" || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id and auction_name are required"})
		return
	}

	p, err := h.Profiles.GetByID(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", profileID)})
		return
	}

	a := models.Auction{
		AuctionID:   uuid.NewString(),
		ProfileID:   profileID,
		AuctionName: name,
	}
	if err := h.Repo.Create(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create auction failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), a.AuctionID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create auction failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listByProfile(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	auctions, err := h.Repo.ListByProfile(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list auctions failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions, "count": len(auctions)})
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("auction_id")
	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get auction failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("auction %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) rename(c *gin.Context) {
	id := c.Param("auction_id")
	name := strings.TrimSpace(c.Query("auction_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auction_name is required"})
		return
	}

	renamed, err := h.Repo.Rename(c.Request.Context(), id, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rename auction failed"})
		return
	}
	if !renamed {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("auction %s not found", id)})
		return
	}

	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || a == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rename auction failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) remove(c *gin.Context) {
	id := c.Param("auction_id")
	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete auction failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("auction %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
