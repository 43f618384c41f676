package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/donations"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// DonationHandler handles donation CRUD and the reservation workflow.
type DonationHandler struct {
	db      *gorm.DB
	service *donations.Service
	guard   *status.Guard
}

// NewDonationHandler constructs a DonationHandler.
func NewDonationHandler(db *gorm.DB, service *donations.Service, guard *status.Guard) *DonationHandler {
	return &DonationHandler{db: db, service: service, guard: guard}
}

// ListAll returns every donation with optional filters. Supported query
// parameters: status, donor_id, recipient_id, search.
func (h *DonationHandler) ListAll(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Donation{})

	if donationStatus := strings.TrimSpace(c.Query("status")); donationStatus != "" {
		query = query.Where("status = ?", donationStatus)
	}
	if donorID := strings.TrimSpace(c.Query("donor_id")); donorID != "" {
		query = query.Where("donor_id = ?", donorID)
	}
	if recipientID := strings.TrimSpace(c.Query("recipient_id")); recipientID != "" {
		query = query.Where("recipient_id = ?", recipientID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbpkg.NormalizeLikePattern(h.db, "%"+search+"%")
		query = query.Where(
			dbpkg.CaseInsensitiveLikeExpr(h.db, "title")+" OR "+dbpkg.CaseInsensitiveLikeExpr(h.db, "description"),
			pattern, pattern)
	}

	var items []models.Donation
	if errList := query.Order("created_at DESC").Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": items})
}

// ListMine returns donations the caller donated or reserved.
func (h *DonationHandler) ListMine(c *gin.Context) {
	identity := getIdentity(c)

	var items []models.Donation
	if errList := h.db.WithContext(c.Request.Context()).
		Where("donor_id = ? OR recipient_id = ?", identity.UserID, identity.UserID).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": items})
}

// Available returns donations open for reservation. Public.
func (h *DonationHandler) Available(c *gin.Context) {
	var items []models.Donation
	if errList := h.db.WithContext(c.Request.Context()).
		Where("status = ?", models.DonationAvailable).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": items})
}

// ByDonor returns donations made by the given user.
func (h *DonationHandler) ByDonor(c *gin.Context) {
	donorID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var items []models.Donation
	if errList := h.db.WithContext(c.Request.Context()).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&items).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donations": items})
}

// createDonationRequest defines the request body for donation creation.
type createDonationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Status      string `json:"status"`
}

// Create records a donation from the caller.
func (h *DonationHandler) Create(c *gin.Context) {
	identity := getIdentity(c)

	var body createDonationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}

	donation, errCreate := h.service.Create(c.Request.Context(), identity.UserID, donations.CreateInput{
		Title:       body.Title,
		Description: body.Description,
		Photo:       body.Photo,
		Status:      body.Status,
	})
	if errCreate != nil {
		writeDomainError(c, errCreate)
		return
	}

	c.JSON(http.StatusCreated, donation)
}

// Get returns one donation. Donor, recipient, or admin only.
func (h *DonationHandler) Get(c *gin.Context) {
	donation, ok := h.loadDonation(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsDonationParticipantOrAdmin(donation); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	c.JSON(http.StatusOK, donation)
}

// updateDonationRequest defines the request body for donation updates.
// Status changes go through the dedicated status endpoint.
type updateDonationRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Photo       *string `json:"photo"`
}

// Update changes a donation's descriptive fields. Donor or admin only.
func (h *DonationHandler) Update(c *gin.Context) {
	donation, ok := h.loadDonation(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(donation); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	var body updateDonationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Title != nil {
		trimmed := strings.TrimSpace(*body.Title)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		updates["title"] = trimmed
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Photo != nil {
		updates["photo"] = *body.Photo
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.Donation{}).
		Where("id = ?", donation.ID).
		Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Delete removes a donation. Donor or admin only.
func (h *DonationHandler) Delete(c *gin.Context) {
	donation, ok := h.loadDonation(c)
	if !ok {
		return
	}
	if errAccess := getChecker(c).IsOwnerOrAdmin(donation); errAccess != nil {
		writeDomainError(c, errAccess)
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.Donation{}, donation.ID).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// updateStatusRequest defines the request body for status changes.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a donation along its lifecycle. Reservation goes through
// the reserve endpoint; this one rejects moves out of available.
func (h *DonationHandler) UpdateStatus(c *gin.Context) {
	donation, ok := h.loadDonation(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errApply := h.guard.Apply(c.Request.Context(), getIdentity(c), &donation, strings.TrimSpace(body.Status)); errApply != nil {
		writeDomainError(c, errApply)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": donation.ID, "status": body.Status})
}

// reserveRequest defines the request body for reservations.
type reserveRequest struct {
	RecipientID uint64 `json:"recipient_id"`
}

// Reserve binds the caller to an available donation.
func (h *DonationHandler) Reserve(c *gin.Context) {
	donationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body reserveRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	reserved, errReserve := h.service.Reserve(c.Request.Context(), getIdentity(c), donationID, body.RecipientID)
	if errReserve != nil {
		writeDomainError(c, errReserve)
		return
	}

	c.JSON(http.StatusOK, reserved)
}

// loadDonation fetches the donation addressed by the :id path parameter.
func (h *DonationHandler) loadDonation(c *gin.Context) (models.Donation, bool) {
	donationID, ok := parseIDParam(c, "id")
	if !ok {
		return models.Donation{}, false
	}

	var donation models.Donation
	errFind := h.db.WithContext(c.Request.Context()).First(&donation, donationID).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "donation not found"})
		return models.Donation{}, false
	}
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Donation{}, false
	}
	return donation, true
}
