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

type WalletHandler struct {
	svs WalletServicer
}

func NewWalletHandler(svs WalletServicer) *WalletHandler {
	return &WalletHandler{
		svs: svs,
	}
}

type WalletResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func walletResponse(wallet *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Balance:   wallet.Balance.InexactFloat64(),
		Currency:  wallet.Currency,
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
}

// Index GET RouteGroup + WalletRoute. Кошелек текущего юзера, создается при первом обращении.
func (h *WalletHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	wallet, err := h.svs.GetOrCreate(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, walletResponse(wallet))
}

type TransactionResponseItem struct {
	ID           uuid.UUID              `json:"id"`
	WalletID     uuid.UUID              `json:"walletId"`
	PaymentID    *uuid.UUID             `json:"paymentId,omitempty"`
	Amount       float64                `json:"amount"`
	BalanceAfter float64                `json:"balanceAfter"`
	Type         domain.TransactionType `json:"type"`
	Description  string                 `json:"description,omitempty"`
	Reference    string                 `json:"reference,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// Transactions GET RouteGroup + WalletTransactionsRoute. История операций, новые первыми.
func (h *WalletHandler) Transactions(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.svs.Transactions(reqCtx, currentUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	response := make([]TransactionResponseItem, len(transactions))
	for i, transaction := range transactions {
		response[i] = TransactionResponseItem{
			ID:           transaction.ID,
			WalletID:     transaction.WalletID,
			PaymentID:    transaction.PaymentID,
			Amount:       transaction.Amount.InexactFloat64(),
			BalanceAfter: transaction.BalanceAfter.InexactFloat64(),
			Type:         transaction.Type,
			Description:  transaction.Description,
			Reference:    transaction.Reference,
			CreatedAt:    transaction.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

type LedgerEntryParams struct {
	Amount      decimal.Decimal `binding:"required"  json:"amount"`
	Description string          `binding:"max=500"   json:"description"`
	Reference   string          `binding:"max=255"   json:"reference"`
}

// Deposit POST RouteGroup + WalletDepositRoute. Пополняет кошелек текущего юзера.
func (h *WalletHandler) Deposit(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params LedgerEntryParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.svs.Deposit(reqCtx, service.LedgerEntryArgs{
		UserID:      currentUserID,
		Amount:      params.Amount,
		Description: params.Description,
		Reference:   params.Reference,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deposit successful",
		"balance": transaction.BalanceAfter.InexactFloat64(),
	})
}

// Withdraw POST RouteGroup + WalletWithdrawRoute. Списывает средства с кошелька текущего юзера.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params LedgerEntryParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.svs.Withdraw(reqCtx, service.LedgerEntryArgs{
		UserID:      currentUserID,
		Amount:      params.Amount,
		Description: params.Description,
		Reference:   params.Reference,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Withdrawal successful",
		"balance": transaction.BalanceAfter.InexactFloat64(),
	})
}

type TransferParams struct {
	RecipientUserID uuid.UUID       `binding:"required" json:"recipientUserId"`
	Amount          decimal.Decimal `binding:"required" json:"amount"`
	Description     string          `binding:"max=500"  json:"description"`
	Reference       string          `binding:"max=255"  json:"reference"`
}

// Transfer POST RouteGroup + WalletTransferRoute. Перевод с кошелька текущего юзера
// на кошелек другого юзера.
func (h *WalletHandler) Transfer(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params TransferParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.svs.Transfer(reqCtx, service.TransferArgs{
		FromUserID:  currentUserID,
		ToUserID:    params.RecipientUserID,
		Amount:      params.Amount,
		Description: params.Description,
		Reference:   params.Reference,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer successful",
		"balance": result.Debit.BalanceAfter.InexactFloat64(),
	})
}
