package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string
	PasswordHash string
	Role         UserRole
}

// Wallet кошелек юзера. Создается лениво при первом обращении, один на юзера.
// Инвариант: Balance всегда равен сумме Amount всех транзакций кошелька.
type Wallet struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uuid.UUID
	Balance   decimal.Decimal
	Currency  string
}

// WalletTransaction запись журнала операций кошелька. Записи не изменяются и не удаляются.
type WalletTransaction struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	WalletID     uuid.UUID
	PaymentID    *uuid.UUID
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Type         TransactionType
	Description  string
	Reference    string
}

// Payment денежный перевод, опционально привязанный к кампании.
// NetAmount = Amount - CommissionAmount.
type Payment struct {
	ID                   uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
	CampaignID           *uuid.UUID
	SenderID             uuid.UUID
	RecipientID          uuid.UUID
	Amount               decimal.Decimal
	CommissionAmount     decimal.Decimal
	NetAmount            decimal.Decimal
	Currency             string
	Status               PaymentStatus
	Type                 PaymentType
	TransactionReference string
	PaymentMethod        string
	Notes                string
}

type Campaign struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	BrandID      uuid.UUID
	InfluencerID *uuid.UUID
	Title        string
	Description  string
	Budget       decimal.Decimal
	Status       CampaignStatus
}
