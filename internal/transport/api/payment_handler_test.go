package api

import (
	"bytes"
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
	"github.com/fsdevblog/creator-market/internal/service/tokens"
	"github.com/fsdevblog/creator-market/internal/transport/api/mocks"
	"github.com/fsdevblog/creator-market/internal/transport/api/testutils"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockPaymentService  *mocks.MockPaymentServicer
	mockCampaignService *mocks.MockCampaignServicer
	jwtSecret           []byte
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockPaymentService = mocks.NewMockPaymentServicer(mockCtrl)
	s.mockCampaignService = mocks.NewMockCampaignServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		PaymentService:  s.mockPaymentService,
		CampaignService: s.mockCampaignService,
		JWTSecretKey:    s.jwtSecret,
	})
}

func (s *PaymentHandlerTestSuite) userToken(userID uuid.UUID, role domain.UserRole) string {
	token, err := tokens.GenerateUserJWT(userID, role, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *PaymentHandlerTestSuite) TestFundEscrow() {
	brandID := uuid.New()
	anotherBrandID := uuid.New()
	influencerID := uuid.New()

	brandToken := s.userToken(brandID, domain.RoleBrand)
	anotherBrandToken := s.userToken(anotherBrandID, domain.RoleBrand)
	influencerToken := s.userToken(influencerID, domain.RoleInfluencer)

	campaign := &domain.Campaign{
		ID:           uuid.New(),
		BrandID:      brandID,
		InfluencerID: &influencerID,
		Title:        "Summer launch",
	}

	// владелец кампании и чужой бренд проходят до проверки владения.
	s.mockCampaignService.EXPECT().
		Get(gomock.Any(), campaign.ID).
		Return(campaign, nil).Times(2)

	s.mockPaymentService.EXPECT().
		FundEscrow(gomock.Any(), campaign.ID, gomock.Any()).
		DoAndReturn(func(_ any, _ uuid.UUID, amount decimal.Decimal) (*domain.Payment, error) {
			s.True(amount.Equal(decimal.NewFromInt(100)))
			return &domain.Payment{
				ID:         uuid.New(),
				CampaignID: &campaign.ID,
				Amount:     amount,
				Status:     domain.PaymentStatusInEscrow,
			}, nil
		}).Times(1)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{name: "campaign owner", jwtToken: brandToken, wantStatus: http.StatusOK},
		{name: "another brand", jwtToken: anotherBrandToken, wantStatus: http.StatusForbidden},
		// инфлюенсер отсекается на уровне роли, до хендлера дело не доходит.
		{name: "influencer", jwtToken: influencerToken, wantStatus: http.StatusForbidden},
		{name: "not authorized", wantStatus: http.StatusUnauthorized},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + "/payment/escrow/" + campaign.ID.String(),
				Body:   bytes.NewReader([]byte(`{"amount": 100}`)),
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithAuthToken(t.jwtToken))
			}
			reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))

			res, err := testutils.MakeRequest(args, reqOpts...)
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestReleaseEscrow() {
	brandID := uuid.New()
	brandToken := s.userToken(brandID, domain.RoleBrand)

	okPayment := &domain.Payment{
		ID:       uuid.New(),
		SenderID: brandID,
		Status:   domain.PaymentStatusInEscrow,
		Type:     domain.PaymentTypeCampaignDeposit,
	}
	releasedPayment := &domain.Payment{
		ID:       uuid.New(),
		SenderID: brandID,
		Status:   domain.PaymentStatusReleased,
		Type:     domain.PaymentTypeCampaignDeposit,
	}

	s.mockPaymentService.EXPECT().
		Get(gomock.Any(), okPayment.ID).
		Return(okPayment, nil).Times(1)
	s.mockPaymentService.EXPECT().
		Get(gomock.Any(), releasedPayment.ID).
		Return(releasedPayment, nil).Times(1)

	s.mockPaymentService.EXPECT().
		ReleaseEscrow(gomock.Any(), okPayment.ID).
		Return(&domain.Payment{ID: okPayment.ID, Status: domain.PaymentStatusReleased}, nil).Times(1)

	// повторный выпуск: сервис отвечает ошибкой состояния, хендлер отдает 400.
	s.mockPaymentService.EXPECT().
		ReleaseEscrow(gomock.Any(), releasedPayment.ID).
		Return(nil, fmt.Errorf("releasing escrow: %w",
			domain.NewInvalidTransitionError(domain.PaymentStatusReleased, domain.PaymentStatusReleased))).
		Times(1)

	cases := []struct {
		name       string
		paymentID  uuid.UUID
		wantStatus int
	}{
		{name: "ok", paymentID: okPayment.ID, wantStatus: http.StatusOK},
		{name: "already released", paymentID: releasedPayment.ID, wantStatus: http.StatusBadRequest},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + "/payment/release/" + t.paymentID.String(),
			}
			res, err := testutils.MakeRequest(args, testutils.WithAuthToken(brandToken))
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestShow_Access() {
	senderID := uuid.New()
	recipientID := uuid.New()
	strangerID := uuid.New()
	adminID := uuid.New()

	payment := &domain.Payment{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      domain.PaymentStatusInEscrow,
		Type:        domain.PaymentTypeCampaignDeposit,
	}

	s.mockPaymentService.EXPECT().
		Get(gomock.Any(), payment.ID).
		Return(payment, nil).Times(4)

	cases := []struct {
		name       string
		userID     uuid.UUID
		role       domain.UserRole
		wantStatus int
	}{
		{name: "sender", userID: senderID, role: domain.RoleBrand, wantStatus: http.StatusOK},
		{name: "recipient", userID: recipientID, role: domain.RoleInfluencer, wantStatus: http.StatusOK},
		{name: "stranger", userID: strangerID, role: domain.RoleBrand, wantStatus: http.StatusForbidden},
		{name: "admin", userID: adminID, role: domain.RoleAdmin, wantStatus: http.StatusOK},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + "/payment/" + payment.ID.String(),
			}
			res, err := testutils.MakeRequest(args, testutils.WithAuthToken(s.userToken(t.userID, t.role)))
			s.Require().NoError(err)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *PaymentHandlerTestSuite) TestUpdateStatus_AdminOnly() {
	adminID := uuid.New()
	brandID := uuid.New()
	paymentID := uuid.New()

	s.mockPaymentService.EXPECT().
		UpdateStatus(gomock.Any(), paymentID, "Failed").
		Return(&domain.Payment{ID: paymentID, Status: domain.PaymentStatusFailed}, nil).Times(1)

	cases := []struct {
		name       string
		userID     uuid.UUID
		role       domain.UserRole
		wantStatus int
	}{
		{name: "admin", userID: adminID, role: domain.RoleAdmin, wantStatus: http.StatusOK},
		{name: "brand", userID: brandID, role: domain.RoleBrand, wantStatus: http.StatusForbidden},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPut,
				URL:    RouteGroup + "/payment/" + paymentID.String() + "/status",
				Body:   bytes.NewReader([]byte(`{"status": "Failed"}`)),
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithAuthToken(s.userToken(t.userID, t.role)),
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
