package repoargs

import (
	"time"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentCreate struct {
	CampaignID           *uuid.UUID
	SenderID             uuid.UUID
	RecipientID          uuid.UUID
	Amount               decimal.Decimal
	CommissionAmount     decimal.Decimal
	NetAmount            decimal.Decimal
	Currency             string
	Status               domain.PaymentStatus
	Type                 domain.PaymentType
	TransactionReference string
	PaymentMethod        string
	Notes                string
}

type PaymentStatusUpdate struct {
	ID          uuid.UUID
	Status      domain.PaymentStatus
	CompletedAt *time.Time
}

// PaymentRelease единый апдейт выпуска эскроу: получатель, статус и метка завершения
// пишутся одним запросом.
type PaymentRelease struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Status      domain.PaymentStatus
	CompletedAt time.Time
}
