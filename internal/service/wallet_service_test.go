package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/internal/service"
	"github.com/fsdevblog/creator-market/internal/service/mocks"
	"github.com/fsdevblog/creator-market/pkg/uow"
	uowmocks "github.com/fsdevblog/creator-market/pkg/uow/mocks"
)

type WalletServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockWalletRepo *mocks.MockWalletRepository
	mockUserRepo   *mocks.MockUserRepository
	service        *service.WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockWalletRepo = mocks.NewMockWalletRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)

	// Настроить возврат WalletRepository в сервисе при инициализации
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).AnyTimes()

	var err error
	s.service, err = service.NewWalletService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *WalletServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectDo настраивает мок UOW так, чтобы Do выполнял переданную функцию с mockTX.
func (s *WalletServiceTestSuite) expectDo(times int) {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		},
	).Times(times)
}

func (s *WalletServiceTestSuite) newWallet(userID uuid.UUID, balance int64) *domain.Wallet {
	return &domain.Wallet{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		UserID:    userID,
		Balance:   decimal.NewFromInt(balance),
		Currency:  service.DefaultCurrency,
	}
}

func (s *WalletServiceTestSuite) TestGetOrCreate_Existing() {
	userID := uuid.New()
	wallet := s.newWallet(userID, 100)

	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), userID).
		Return(wallet, nil).Times(1)

	result, err := s.service.GetOrCreate(s.T().Context(), userID)
	s.Require().NoError(err)
	s.Equal(wallet.ID, result.ID)
}

func (s *WalletServiceTestSuite) TestGetOrCreate_CreatesMissing() {
	userID := uuid.New()
	wallet := s.newWallet(userID, 0)

	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), userID).
		Return(nil, domain.ErrRecordNotFound).Times(1)

	s.expectDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).Times(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(1)

	s.mockUserRepo.EXPECT().
		FindByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Role: domain.RoleBrand}, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateWallet{UserID: userID, Currency: service.DefaultCurrency}).
		Return(wallet, nil).Times(1)

	result, err := s.service.GetOrCreate(s.T().Context(), userID)
	s.Require().NoError(err)
	s.True(result.Balance.IsZero())
}

// TestGetOrCreate_UnknownUser кошелек не создается для несуществующего юзера.
func (s *WalletServiceTestSuite) TestGetOrCreate_UnknownUser() {
	userID := uuid.New()

	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), userID).
		Return(nil, domain.ErrRecordNotFound).Times(1)

	s.expectDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).Times(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(1)

	s.mockUserRepo.EXPECT().
		FindByID(gomock.Any(), userID).
		Return(nil, domain.ErrRecordNotFound).Times(1)

	// до создания кошелька дело дойти не должно.
	s.mockWalletRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.GetOrCreate(s.T().Context(), userID)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *WalletServiceTestSuite) TestDeposit() {
	userID := uuid.New()
	wallet := s.newWallet(userID, 100)
	amount := decimal.NewFromInt(50)
	newBalance := decimal.NewFromInt(150)

	s.expectDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		LockByUserID(gomock.Any(), userID).
		Return(wallet, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		UpdateBalance(gomock.Any(), wallet.ID, newBalance).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, balance decimal.Decimal) (*domain.Wallet, error) {
			updated := *wallet
			updated.Balance = balance
			return &updated, nil
		}).Times(1)

	s.mockWalletRepo.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			// убеждаемся что запись журнала согласована с балансом.
			s.Equal(wallet.ID, args.WalletID)
			s.Equal(amount, args.Amount)
			s.Equal(newBalance, args.BalanceAfter)
			s.Equal(domain.TransactionDeposit, args.Type)
			return &domain.WalletTransaction{
				ID:           uuid.New(),
				WalletID:     args.WalletID,
				Amount:       args.Amount,
				BalanceAfter: args.BalanceAfter,
				Type:         args.Type,
			}, nil
		}).Times(1)

	transaction, err := s.service.Deposit(s.T().Context(), service.LedgerEntryArgs{
		UserID: userID,
		Amount: amount,
	})
	s.Require().NoError(err)
	s.Equal(newBalance, transaction.BalanceAfter)
}

func (s *WalletServiceTestSuite) TestDeposit_NonPositiveAmount() {
	s.expectDo(2)

	cases := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero", amount: decimal.Zero},
		{name: "negative", amount: decimal.NewFromInt(-5)},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			_, err := s.service.Deposit(s.T().Context(), service.LedgerEntryArgs{
				UserID: uuid.New(),
				Amount: t.amount,
			})
			s.Require().ErrorIs(err, domain.ErrInvalidArgument)
		})
	}
}

func (s *WalletServiceTestSuite) TestWithdraw() {
	userID := uuid.New()
	availableBalance := decimal.NewFromInt(10)

	s.expectDo(2)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(2)

	s.mockWalletRepo.EXPECT().
		LockByUserID(gomock.Any(), userID).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
			return s.newWallet(id, availableBalance.IntPart()), nil
		}).Times(2)

	s.mockWalletRepo.EXPECT().
		UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, walletID uuid.UUID, balance decimal.Decimal) (*domain.Wallet, error) {
			s.True(balance.IsZero())
			return &domain.Wallet{ID: walletID, UserID: userID, Balance: balance}, nil
		}).Times(1)

	s.mockWalletRepo.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			// списание уходит в журнал со знаком минус.
			s.Equal(availableBalance.Neg(), args.Amount)
			s.Equal(domain.TransactionWithdrawal, args.Type)
			s.True(args.BalanceAfter.IsZero())
			return &domain.WalletTransaction{
				ID:           uuid.New(),
				WalletID:     args.WalletID,
				Amount:       args.Amount,
				BalanceAfter: args.BalanceAfter,
				Type:         args.Type,
			}, nil
		}).Times(1)

	cases := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "ok", amount: availableBalance, wantErr: nil},
		{
			name:    "not enough balance",
			amount:  availableBalance.Add(decimal.NewFromFloat(0.001)),
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			result, err := s.service.Withdraw(s.T().Context(), service.LedgerEntryArgs{
				UserID: userID,
				Amount: t.amount,
			})
			if t.wantErr != nil {
				s.Require().ErrorIs(err, t.wantErr)
				return
			}
			s.Require().NoError(err)
			s.NotNil(result)
		})
	}
}

func (s *WalletServiceTestSuite) TestTransfer() {
	fromUserID := uuid.New()
	toUserID := uuid.New()
	fromWallet := s.newWallet(fromUserID, 100)
	toWallet := s.newWallet(toUserID, 5)
	amount := decimal.NewFromInt(40)

	s.expectDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(3)

	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), fromUserID).
		Return(fromWallet, nil).Times(1)
	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), toUserID).
		Return(toWallet, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		LockByIDs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ids []uuid.UUID) ([]domain.Wallet, error) {
			s.ElementsMatch([]uuid.UUID{fromWallet.ID, toWallet.ID}, ids)
			return []domain.Wallet{*fromWallet, *toWallet}, nil
		}).Times(1)

	s.mockWalletRepo.EXPECT().
		UpdateBalance(gomock.Any(), fromWallet.ID, decimal.NewFromInt(60)).
		Return(&domain.Wallet{ID: fromWallet.ID, Balance: decimal.NewFromInt(60)}, nil).Times(1)
	s.mockWalletRepo.EXPECT().
		UpdateBalance(gomock.Any(), toWallet.ID, decimal.NewFromInt(45)).
		Return(&domain.Wallet{ID: toWallet.ID, Balance: decimal.NewFromInt(45)}, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			switch args.WalletID {
			case fromWallet.ID:
				s.Equal(amount.Neg(), args.Amount)
				s.Equal(domain.TransactionCampaignPayment, args.Type)
			case toWallet.ID:
				s.Equal(amount, args.Amount)
				s.Equal(domain.TransactionCampaignEarning, args.Type)
			default:
				s.Failf("unexpected wallet", "wallet %s", args.WalletID)
			}
			return &domain.WalletTransaction{
				ID:           uuid.New(),
				WalletID:     args.WalletID,
				Amount:       args.Amount,
				BalanceAfter: args.BalanceAfter,
				Type:         args.Type,
			}, nil
		}).Times(2)

	result, err := s.service.Transfer(s.T().Context(), service.TransferArgs{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
	})
	s.Require().NoError(err)
	s.Equal(amount.Neg(), result.Debit.Amount)
	s.Equal(amount, result.Credit.Amount)
}

func (s *WalletServiceTestSuite) TestTransfer_SameUser() {
	userID := uuid.New()

	_, err := s.service.Transfer(s.T().Context(), service.TransferArgs{
		FromUserID: userID,
		ToUserID:   userID,
		Amount:     decimal.NewFromInt(10),
	})
	s.Require().ErrorIs(err, domain.ErrInvalidArgument)
}

func (s *WalletServiceTestSuite) TestTransfer_InsufficientFunds() {
	fromUserID := uuid.New()
	toUserID := uuid.New()
	fromWallet := s.newWallet(fromUserID, 5)
	toWallet := s.newWallet(toUserID, 0)

	s.expectDo(1)
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.WalletRepoName)).
		Return(s.mockWalletRepo, nil).Times(3)

	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), fromUserID).
		Return(fromWallet, nil).Times(1)
	s.mockWalletRepo.EXPECT().
		FindByUserID(gomock.Any(), toUserID).
		Return(toWallet, nil).Times(1)

	s.mockWalletRepo.EXPECT().
		LockByIDs(gomock.Any(), gomock.Any()).
		Return([]domain.Wallet{*fromWallet, *toWallet}, nil).Times(1)

	// баланс и журнал трогать нельзя.
	s.mockWalletRepo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockWalletRepo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Transfer(s.T().Context(), service.TransferArgs{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     decimal.NewFromInt(10),
	})
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
}
