package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/service"
)

type CampaignHandler struct {
	svs CampaignServicer
}

func NewCampaignHandler(svs CampaignServicer) *CampaignHandler {
	return &CampaignHandler{
		svs: svs,
	}
}

type CampaignResponse struct {
	ID           uuid.UUID             `json:"id"`
	BrandID      uuid.UUID             `json:"brandId"`
	InfluencerID *uuid.UUID            `json:"influencerId,omitempty"`
	Title        string                `json:"title"`
	Description  string                `json:"description,omitempty"`
	Budget       float64               `json:"budget"`
	Status       domain.CampaignStatus `json:"status"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

func campaignResponse(campaign *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:           campaign.ID,
		BrandID:      campaign.BrandID,
		InfluencerID: campaign.InfluencerID,
		Title:        campaign.Title,
		Description:  campaign.Description,
		Budget:       campaign.Budget.InexactFloat64(),
		Status:       campaign.Status,
		CreatedAt:    campaign.CreatedAt,
		UpdatedAt:    campaign.UpdatedAt,
	}
}

type CreateCampaignParams struct {
	Title       string          `binding:"required,min=1,max=255" json:"title"`
	Description string          `binding:"max=2000"               json:"description"`
	Budget      decimal.Decimal `binding:"required"               json:"budget"`
}

// Create POST RouteGroup + CampaignRoute. Создает кампанию текущего бренда в статусе Draft.
func (h *CampaignHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CreateCampaignParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaign, err := h.svs.Create(reqCtx, currentUserID, service.CreateCampaignArgs{
		Title:       params.Title,
		Description: params.Description,
		Budget:      params.Budget,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaignResponse(campaign))
}

// Index GET RouteGroup + CampaignRoute. Кампании текущего бренда.
func (h *CampaignHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaigns, err := h.svs.GetByBrand(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		response[i] = campaignResponse(&campaigns[i])
	}

	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + CampaignRoute + /:campaignID.
func (h *CampaignHandler) Show(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "campaignID")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaign, err := h.svs.Get(reqCtx, campaignID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaignResponse(campaign))
}

type AssignInfluencerParams struct {
	InfluencerID uuid.UUID `binding:"required" json:"influencerId"`
}

// AssignInfluencer POST RouteGroup + CampaignRoute + /:campaignID/assign.
// Назначает инфлюенсера на кампанию текущего бренда.
func (h *CampaignHandler) AssignInfluencer(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	campaignID, ok := parseUUIDParam(c, "campaignID")
	if !ok {
		return
	}

	var params AssignInfluencerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if !h.checkOwnership(c, reqCtx, campaignID, currentUserID) {
		return
	}

	campaign, err := h.svs.AssignInfluencer(reqCtx, campaignID, params.InfluencerID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaignResponse(campaign))
}

type UpdateCampaignStatusParams struct {
	Status string `binding:"required,max=50" json:"status"`
}

// UpdateStatus PUT RouteGroup + CampaignRoute + /:campaignID/status.
// Переводит кампанию в указанный статус. Доступно бренду-владельцу и админу.
func (h *CampaignHandler) UpdateStatus(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	campaignID, ok := parseUUIDParam(c, "campaignID")
	if !ok {
		return
	}

	var params UpdateCampaignStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if !h.checkOwnership(c, reqCtx, campaignID, currentUserID) {
		return
	}

	campaign, err := h.svs.UpdateStatus(reqCtx, campaignID, params.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaignResponse(campaign))
}

func (h *CampaignHandler) checkOwnership(
	c *gin.Context,
	reqCtx context.Context,
	campaignID uuid.UUID,
	currentUserID uuid.UUID,
) bool {
	campaign, err := h.svs.Get(reqCtx, campaignID)
	if err != nil {
		abortWithServiceError(c, err)
		return false
	}
	if campaign.BrandID != currentUserID && getUserRoleFromContext(c) != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}
