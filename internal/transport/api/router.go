package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup    = "/api"
	RegisterRoute = "/user/register"
	LoginRoute    = "/user/login"

	WalletRoute             = "/wallet"
	WalletTransactionsRoute = "/wallet/transactions"
	WalletDepositRoute      = "/wallet/deposit"
	WalletWithdrawRoute     = "/wallet/withdraw"
	WalletTransferRoute     = "/wallet/transfer"

	PaymentRoute         = "/payment"
	PaymentSentRoute     = "/payment/sent"
	PaymentReceivedRoute = "/payment/received"
	PaymentCampaignRoute = "/payment/campaign/:campaignID"
	PaymentEscrowRoute   = "/payment/escrow/:campaignID"
	PaymentReleaseRoute  = "/payment/release/:paymentID"
	PaymentRefundRoute   = "/payment/refund/:paymentID"

	CampaignRoute = "/campaign"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	UserService     UserServicer
	WalletService   WalletServicer
	PaymentService  PaymentServicer
	CampaignService CampaignServicer
	JWTSecretKey    []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	walletHandler := NewWalletHandler(args.WalletService)
	paymentHandler := NewPaymentHandler(args.PaymentService, args.CampaignService)
	campaignHandler := NewCampaignHandler(args.CampaignService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(WalletRoute, walletHandler.Index)
	api.GET(WalletTransactionsRoute, walletHandler.Transactions)
	api.POST(WalletDepositRoute, walletHandler.Deposit)
	api.POST(WalletWithdrawRoute, walletHandler.Withdraw)
	api.POST(WalletTransferRoute, walletHandler.Transfer)

	brandOnly := middlewares.RoleRequired(domain.RoleBrand, domain.RoleAdmin)
	adminOnly := middlewares.RoleRequired(domain.RoleAdmin)

	api.POST(PaymentRoute, brandOnly, paymentHandler.Create)
	api.GET(PaymentSentRoute, paymentHandler.Sent)
	api.GET(PaymentReceivedRoute, paymentHandler.Received)
	api.GET(PaymentRoute+"/:paymentID", paymentHandler.Show)
	api.GET(PaymentCampaignRoute, paymentHandler.ByCampaign)
	api.POST(PaymentEscrowRoute, brandOnly, paymentHandler.FundEscrow)
	api.POST(PaymentReleaseRoute, paymentHandler.ReleaseEscrow)
	api.POST(PaymentRefundRoute, paymentHandler.RefundEscrow)
	api.PUT(PaymentRoute+"/:paymentID/status", adminOnly, paymentHandler.UpdateStatus)

	api.POST(CampaignRoute, brandOnly, campaignHandler.Create)
	api.GET(CampaignRoute, campaignHandler.Index)
	api.GET(CampaignRoute+"/:campaignID", campaignHandler.Show)
	api.POST(CampaignRoute+"/:campaignID/assign", brandOnly, campaignHandler.AssignInfluencer)
	api.PUT(CampaignRoute+"/:campaignID/status", campaignHandler.UpdateStatus)

	return r
}
