package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type WalletServicer interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Transactions(ctx context.Context, userID uuid.UUID) ([]domain.WalletTransaction, error)
	Deposit(ctx context.Context, args service.LedgerEntryArgs) (*domain.WalletTransaction, error)
	Withdraw(ctx context.Context, args service.LedgerEntryArgs) (*domain.WalletTransaction, error)
	Transfer(ctx context.Context, args service.TransferArgs) (*service.TransferResult, error)
}

type PaymentServicer interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Payment, error)
	GetBySender(ctx context.Context, senderID uuid.UUID) ([]domain.Payment, error)
	GetByRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Payment, error)
	Create(ctx context.Context, senderID uuid.UUID, args service.CreatePaymentArgs) (*domain.Payment, error)
	FundEscrow(ctx context.Context, campaignID uuid.UUID, amount decimal.Decimal) (*domain.Payment, error)
	ReleaseEscrow(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	RefundEscrow(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, status string) (*domain.Payment, error)
}

type CampaignServicer interface {
	Create(ctx context.Context, brandID uuid.UUID, args service.CreateCampaignArgs) (*domain.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]domain.Campaign, error)
	AssignInfluencer(ctx context.Context, campaignID, influencerID uuid.UUID) (*domain.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uuid.UUID, status string) (*domain.Campaign, error)
}
