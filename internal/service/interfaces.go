package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type WalletRepository interface {
	Create(ctx context.Context, args repoargs.CreateWallet) (*domain.Wallet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	LockByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Wallet, error)
	UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) (*domain.Wallet, error)
	CreateTransaction(ctx context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error)
	GetTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.WalletTransaction, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByCampaignID(ctx context.Context, campaignID uuid.UUID) ([]domain.Payment, error)
	GetBySenderID(ctx context.Context, senderID uuid.UUID) ([]domain.Payment, error)
	GetByRecipientID(ctx context.Context, recipientID uuid.UUID) ([]domain.Payment, error)
	GetForVerification(ctx context.Context, limit uint) ([]domain.Payment, error)
	UpdateStatus(ctx context.Context, args repoargs.PaymentStatusUpdate) (*domain.Payment, error)
	Release(ctx context.Context, args repoargs.PaymentRelease) (*domain.Payment, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	GetByBrandID(ctx context.Context, brandID uuid.UUID) ([]domain.Campaign, error)
	AssignInfluencer(ctx context.Context, campaignID, influencerID uuid.UUID) (*domain.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID uuid.UUID, status domain.CampaignStatus) (*domain.Campaign, error)
}

// WalletLedger операции журнала кошелька, выполняемые внутри чужой транзакции.
// Реализуется WalletService, используется PaymentService для атомарных эскроу-операций.
type WalletLedger interface {
	CreditInTx(ctx context.Context, tx uow.TX, args LedgerEntryArgs) (*domain.WalletTransaction, error)
	DebitInTx(ctx context.Context, tx uow.TX, args LedgerEntryArgs) (*domain.WalletTransaction, error)
}
