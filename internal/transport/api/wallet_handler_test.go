package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/logger"
	"github.com/fsdevblog/creator-market/internal/service"
	"github.com/fsdevblog/creator-market/internal/service/tokens"
	"github.com/fsdevblog/creator-market/internal/transport/api/mocks"
	"github.com/fsdevblog/creator-market/internal/transport/api/testutils"
)

type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *mocks.MockWalletServicer
	jwtSecret         []byte
}

func TestWalletHandlerSuite(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}

func (s *WalletHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockWalletService = mocks.NewMockWalletServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		WalletService: s.mockWalletService,
		JWTSecretKey:  s.jwtSecret,
	})
}

func (s *WalletHandlerTestSuite) userToken(userID uuid.UUID, role domain.UserRole) string {
	token, err := tokens.GenerateUserJWT(userID, role, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *WalletHandlerTestSuite) TestIndex() {
	userID := uuid.New()
	jwtToken := s.userToken(userID, domain.RoleBrand)

	wallet := &domain.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.NewFromInt(150),
		Currency: "NPR",
	}

	s.mockWalletService.EXPECT().
		GetOrCreate(gomock.Any(), userID).
		Return(wallet, nil).Times(1)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{name: "ok", jwtToken: jwtToken, wantStatus: http.StatusOK},
		{name: "not authorized", wantStatus: http.StatusUnauthorized},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + WalletRoute,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithAuthToken(t.jwtToken))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus != http.StatusOK {
				return
			}

			var response WalletResponse
			s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
			s.Equal(wallet.ID, response.ID)
			s.InDelta(150, response.Balance, 0.0001)
			s.Equal("NPR", response.Currency)
		})
	}
}

func (s *WalletHandlerTestSuite) TestDeposit() {
	userID := uuid.New()
	jwtToken := s.userToken(userID, domain.RoleInfluencer)

	s.mockWalletService.EXPECT().
		Deposit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.LedgerEntryArgs) (*domain.WalletTransaction, error) {
			s.Equal(userID, args.UserID)
			s.True(args.Amount.Equal(decimal.NewFromInt(100)))
			return &domain.WalletTransaction{
				ID:           uuid.New(),
				Amount:       args.Amount,
				BalanceAfter: decimal.NewFromInt(100),
			}, nil
		}).Times(1)

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{name: "ok", payload: `{"amount": 100}`, wantStatus: http.StatusOK},
		{name: "missing amount", payload: `{}`, wantStatus: http.StatusBadRequest},
		{name: "broken json", payload: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + WalletDepositRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithAuthToken(jwtToken),
				testutils.WithHeader("Content-Type", "application/json"),
			)
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *WalletHandlerTestSuite) TestWithdraw_ErrorMapping() {
	userID := uuid.New()
	jwtToken := s.userToken(userID, domain.RoleBrand)

	insufficientAmount := decimal.NewFromInt(1000)
	lockedAmount := decimal.NewFromInt(20)

	s.mockWalletService.EXPECT().
		Withdraw(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.LedgerEntryArgs) (*domain.WalletTransaction, error) {
			switch {
			case args.Amount.Equal(insufficientAmount):
				return nil, fmt.Errorf("withdraw: %w", domain.ErrInsufficientFunds)
			case args.Amount.Equal(lockedAmount):
				return nil, fmt.Errorf("withdraw: %w", domain.ErrLockTimeout)
			default:
				return &domain.WalletTransaction{ID: uuid.New(), BalanceAfter: decimal.Zero}, nil
			}
		}).Times(3)

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{name: "ok", payload: `{"amount": 5}`, wantStatus: http.StatusOK},
		{name: "insufficient funds", payload: `{"amount": 1000}`, wantStatus: http.StatusBadRequest},
		// конкурентная блокировка кошелька отдается как конфликт.
		{name: "lock timeout", payload: `{"amount": 20}`, wantStatus: http.StatusConflict},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + WalletWithdrawRoute,
				Body:   bytes.NewReader([]byte(t.payload)),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithAuthToken(jwtToken),
				testutils.WithHeader("Content-Type", "application/json"),
			)
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *WalletHandlerTestSuite) TestTransfer() {
	userID := uuid.New()
	recipientID := uuid.New()
	jwtToken := s.userToken(userID, domain.RoleBrand)

	s.mockWalletService.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.TransferArgs) (*service.TransferResult, error) {
			s.Equal(userID, args.FromUserID)
			s.Equal(recipientID, args.ToUserID)
			return &service.TransferResult{
				Debit:  &domain.WalletTransaction{ID: uuid.New(), BalanceAfter: decimal.NewFromInt(60)},
				Credit: &domain.WalletTransaction{ID: uuid.New(), BalanceAfter: decimal.NewFromInt(45)},
			}, nil
		}).Times(1)

	payload := fmt.Sprintf(`{"recipientUserId": %q, "amount": 40}`, recipientID)

	args := testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WalletTransferRoute,
		Body:   bytes.NewReader([]byte(payload)),
	}
	res, err := testutils.MakeRequest(args,
		testutils.WithAuthToken(jwtToken),
		testutils.WithHeader("Content-Type", "application/json"),
	)
	s.Require().NoError(err)

	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}
