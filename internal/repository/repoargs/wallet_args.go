package repoargs

import (
	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateWallet struct {
	UserID   uuid.UUID
	Currency string
}

type WalletTransactionCreate struct {
	WalletID     uuid.UUID
	PaymentID    *uuid.UUID
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Type         domain.TransactionType
	Description  string
	Reference    string
}
