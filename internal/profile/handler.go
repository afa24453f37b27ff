package profile

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auctionhub/pkg/models"
)

// premiumPlanPrice is the flat price recorded for a plan upgrade.
const premiumPlanPrice = 29.99

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.GET("/users/:profile_id", h.getByID)
	rg.PUT("/users/:profile_id/email", h.updateEmail)
	rg.POST("/payments", h.makePayment)
}

func (h *Handler) create(c *gin.Context) {
	email := strings.TrimSpace(strings.ToLower(c.Query("email")))
	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		role = "staff"
	}

	if !strings.Contains(email, "@") || len(email) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	switch role {
	case "staff", "admin", "viewer":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be one of: staff, admin, viewer"})
		return
	}

	if existing, _ := h.Repo.GetByEmail(c.Request.Context(), email); existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}

	p := models.Profile{
		ProfileID: uuid.NewString(),
		Email:     email,
		Role:      role,
		Plan:      "free",
	}
	if err := h.Repo.Create(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create profile failed"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), p.ProfileID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create profile failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("profile_id")
	p, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get profile failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", id)})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateEmail(c *gin.Context) {
	id := c.Param("profile_id")
	email := strings.TrimSpace(strings.ToLower(c.Query("email")))
	if !strings.Contains(email, "@") || len(email) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	if existing, _ := h.Repo.GetByEmail(c.Request.Context(), email); existing != nil && existing.ProfileID != id {
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}

	updated, err := h.Repo.UpdateEmail(c.Request.Context(), id, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update email failed"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", id)})
		return
	}

	p, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || p == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update email failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// makePayment records a payment and upgrades the profile to the premium
// plan. Viewer profiles cannot pay; this is the only role check in the
// service.
func (h *Handler) makePayment(c *gin.Context) {
	id := strings.TrimSpace(c.Query("profile_id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_id is required"})
		return
	}

	p, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("profile %s not found", id)})
		return
	}
	if p.Role == "viewer" {
		c.JSON(http.StatusForbidden, gin.H{"error": "viewer profiles cannot make payments"})
		return
	}

	pay := models.Payment{
		PaymentID: uuid.NewString(),
		ProfileID: id,
		Amount:    premiumPlanPrice,
	}
	if err := h.Repo.InsertPayment(c.Request.Context(), pay); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "record payment failed"})
		return
	}
	if _, err := h.Repo.UpdatePlan(c.Request.Context(), id, "premium"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "plan upgrade failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_id": pay.PaymentID,
		"profile_id": id,
		"amount":     pay.Amount,
		"plan":       "premium",
	})
}
