package repoargs

import (
	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CampaignCreate struct {
	BrandID     uuid.UUID
	Title       string
	Description string
	Budget      decimal.Decimal
	Status      domain.CampaignStatus
}
