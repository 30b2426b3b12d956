package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/famboard/famboard/internal/services"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/response"
)

// FamilyHandler serves family membership and invite endpoints.
type FamilyHandler struct {
	families *services.FamilyService
}

// NewFamilyHandler creates a FamilyHandler.
func NewFamilyHandler(families *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{families: families}
}

type createFamilyRequest struct {
	Description string `json:"description" validate:"max=1024"`
	Language    string `json:"language" validate:"required,notblank,max=64"`
}

type joinFamilyRequest struct {
	Code string `json:"code" validate:"required,numeric"`
}

// Create founds a new family with the caller as first member.
func (h *FamilyHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req createFamilyRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	family, err := h.families.Create(c.Request.Context(), userID, services.CreateFamilyInput{
		Description: req.Description,
		Language:    req.Language,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, family)
}

// Get returns the caller's family with its members.
func (h *FamilyHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	family, err := h.families.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, family)
}

// Invite issues a short-lived numeric invite code.
func (h *FamilyHandler) Invite(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	invite, err := h.families.CreateInvite(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invite)
}

// InviteQR issues an invite code and renders it as a QR code PNG, for
// holding one phone up to another.
func (h *FamilyHandler) InviteQR(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	invite, err := h.families.CreateInvite(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	png, err := qrcode.Encode(invite.Code, qrcode.Medium, 256)
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Activity returns the family's recent audit trail.
func (h *FamilyHandler) Activity(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.families.RecentActivity(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}

// Join adds the caller to the family an invite code points at.
func (h *FamilyHandler) Join(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req joinFamilyRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	family, err := h.families.Join(c.Request.Context(), userID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, family)
}
