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

type PaymentHandler struct {
	svs         PaymentServicer
	campaignSvs CampaignServicer
}

func NewPaymentHandler(svs PaymentServicer, campaignSvs CampaignServicer) *PaymentHandler {
	return &PaymentHandler{
		svs:         svs,
		campaignSvs: campaignSvs,
	}
}

type PaymentResponse struct {
	ID                   uuid.UUID            `json:"id"`
	CampaignID           *uuid.UUID           `json:"campaignId,omitempty"`
	SenderID             uuid.UUID            `json:"senderId"`
	RecipientID          uuid.UUID            `json:"recipientId"`
	Amount               float64              `json:"amount"`
	CommissionAmount     float64              `json:"commissionAmount"`
	NetAmount            float64              `json:"netAmount"`
	Currency             string               `json:"currency"`
	Status               domain.PaymentStatus `json:"status"`
	Type                 domain.PaymentType   `json:"type"`
	TransactionReference string               `json:"transactionReference,omitempty"`
	PaymentMethod        string               `json:"paymentMethod,omitempty"`
	Notes                string               `json:"notes,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	CompletedAt          *time.Time           `json:"completedAt,omitempty"`
}

func paymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   payment.ID,
		CampaignID:           payment.CampaignID,
		SenderID:             payment.SenderID,
		RecipientID:          payment.RecipientID,
		Amount:               payment.Amount.InexactFloat64(),
		CommissionAmount:     payment.CommissionAmount.InexactFloat64(),
		NetAmount:            payment.NetAmount.InexactFloat64(),
		Currency:             payment.Currency,
		Status:               payment.Status,
		Type:                 payment.Type,
		TransactionReference: payment.TransactionReference,
		PaymentMethod:        payment.PaymentMethod,
		Notes:                payment.Notes,
		CreatedAt:            payment.CreatedAt,
		CompletedAt:          payment.CompletedAt,
	}
}

func paymentsResponse(payments []domain.Payment) []PaymentResponse {
	response := make([]PaymentResponse, len(payments))
	for i := range payments {
		response[i] = paymentResponse(&payments[i])
	}
	return response
}

type CreatePaymentParams struct {
	CampaignID           *uuid.UUID      `json:"campaignId"`
	RecipientID          uuid.UUID       `binding:"required" json:"recipientId"`
	Amount               decimal.Decimal `binding:"required" json:"amount"`
	Currency             string          `binding:"max=3"    json:"currency"`
	Type                 string          `binding:"max=50"   json:"type"`
	TransactionReference string          `binding:"max=255"  json:"transactionReference"`
	PaymentMethod        string          `binding:"max=50"   json:"paymentMethod"`
	Notes                string          `binding:"max=500"  json:"notes"`
}

// Create POST RouteGroup + PaymentRoute. Создает платеж от имени текущего юзера.
// Если платеж привязан к кампании, кампания должна принадлежать текущему юзеру.
func (h *PaymentHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CreatePaymentParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if params.CampaignID != nil && !h.checkCampaignOwnership(c, reqCtx, *params.CampaignID) {
		return
	}

	payment, err := h.svs.Create(reqCtx, currentUserID, service.CreatePaymentArgs{
		CampaignID:           params.CampaignID,
		RecipientID:          params.RecipientID,
		Amount:               params.Amount,
		Currency:             params.Currency,
		Type:                 params.Type,
		TransactionReference: params.TransactionReference,
		PaymentMethod:        params.PaymentMethod,
		Notes:                params.Notes,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, paymentResponse(payment))
}

// Show GET RouteGroup + PaymentRoute + /:paymentID. Платеж видят только его стороны и админ.
func (h *PaymentHandler) Show(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	paymentID, ok := parseUUIDParam(c, "paymentID")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payment, err := h.svs.Get(reqCtx, paymentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if payment.SenderID != currentUserID && payment.RecipientID != currentUserID &&
		getUserRoleFromContext(c) != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, paymentResponse(payment))
}

// Sent GET RouteGroup + PaymentSentRoute. Платежи, отправленные текущим юзером.
func (h *PaymentHandler) Sent(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payments, err := h.svs.GetBySender(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentsResponse(payments))
}

// Received GET RouteGroup + PaymentReceivedRoute. Платежи, полученные текущим юзером.
func (h *PaymentHandler) Received(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payments, err := h.svs.GetByRecipient(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentsResponse(payments))
}

// ByCampaign GET RouteGroup + PaymentCampaignRoute. Платежи кампании видят ее бренд,
// назначенный инфлюенсер и админ.
func (h *PaymentHandler) ByCampaign(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	campaignID, ok := parseUUIDParam(c, "campaignID")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	campaign, campaignErr := h.campaignSvs.Get(reqCtx, campaignID)
	if campaignErr != nil {
		abortWithServiceError(c, campaignErr)
		return
	}

	isParticipant := campaign.BrandID == currentUserID ||
		(campaign.InfluencerID != nil && *campaign.InfluencerID == currentUserID)
	if !isParticipant && getUserRoleFromContext(c) != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	payments, err := h.svs.GetByCampaign(reqCtx, campaignID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentsResponse(payments))
}

type FundEscrowParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
}

// FundEscrow POST RouteGroup + PaymentEscrowRoute + /:campaignID. Помещает сумму
// в эскроу кампании. Доступно бренду-владельцу кампании и админу.
func (h *PaymentHandler) FundEscrow(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "campaignID")
	if !ok {
		return
	}

	var params FundEscrowParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if !h.checkCampaignOwnership(c, reqCtx, campaignID) {
		return
	}

	payment, err := h.svs.FundEscrow(reqCtx, campaignID, params.Amount)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Escrow payment processed successfully",
		"payment": paymentResponse(payment),
	})
}

// ReleaseEscrow POST RouteGroup + PaymentReleaseRoute + /:paymentID. Выпускает
// эскроу-платеж инфлюенсеру. Доступно отправителю платежа и админу.
func (h *PaymentHandler) ReleaseEscrow(c *gin.Context) {
	paymentID, ok := parseUUIDParam(c, "paymentID")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if !h.checkPaymentSender(c, reqCtx, paymentID) {
		return
	}

	payment, err := h.svs.ReleaseEscrow(reqCtx, paymentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Escrow payment released successfully",
		"payment": paymentResponse(payment),
	})
}

// RefundEscrow POST RouteGroup + PaymentRefundRoute + /:paymentID. Возвращает
// эскроу-платеж бренду. Доступно отправителю платежа и админу.
func (h *PaymentHandler) RefundEscrow(c *gin.Context) {
	paymentID, ok := parseUUIDParam(c, "paymentID")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if !h.checkPaymentSender(c, reqCtx, paymentID) {
		return
	}

	payment, err := h.svs.RefundEscrow(reqCtx, paymentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Escrow payment refunded successfully",
		"payment": paymentResponse(payment),
	})
}

type UpdatePaymentStatusParams struct {
	Status string `binding:"required,max=50" json:"status"`
}

// UpdateStatus PUT RouteGroup + PaymentRoute + /:paymentID/status. Админский перевод
// платежа в произвольный статус, без движения денег.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	paymentID, ok := parseUUIDParam(c, "paymentID")
	if !ok {
		return
	}

	var params UpdatePaymentStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	payment, err := h.svs.UpdateStatus(reqCtx, paymentID, params.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated successfully",
		"payment": paymentResponse(payment),
	})
}

// checkCampaignOwnership абортит запрос, если кампания не принадлежит текущему юзеру
// (админу можно всё). Возвращает false если запрос был оборван.
func (h *PaymentHandler) checkCampaignOwnership(c *gin.Context, reqCtx context.Context, campaignID uuid.UUID) bool {
	campaign, err := h.campaignSvs.Get(reqCtx, campaignID)
	if err != nil {
		abortWithServiceError(c, err)
		return false
	}
	if campaign.BrandID != getUserIDFromContext(c) && getUserRoleFromContext(c) != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}

// checkPaymentSender абортит запрос, если текущий юзер не отправитель платежа и не админ.
func (h *PaymentHandler) checkPaymentSender(c *gin.Context, reqCtx context.Context, paymentID uuid.UUID) bool {
	payment, err := h.svs.Get(reqCtx, paymentID)
	if err != nil {
		abortWithServiceError(c, err)
		return false
	}
	if payment.SenderID != getUserIDFromContext(c) && getUserRoleFromContext(c) != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}
