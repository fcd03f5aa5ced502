package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fsdevblog/creator-market/internal/service/psswd"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

type AppServices struct {
	UserService     *UserService
	WalletService   *WalletService
	PaymentService  *PaymentService
	CampaignService *CampaignService
}

type FactoryArgs struct {
	JWTSecret      []byte
	PlatformUserID uuid.UUID
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, args.JWTSecret, psswd.PasswordHash(""))
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	walletService, walletServiceErr := NewWalletService(unitOfWork)
	if walletServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", walletServiceErr.Error())
	}

	paymentService, paymentServiceErr := NewPaymentService(unitOfWork, walletService, args.PlatformUserID)
	if paymentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", paymentServiceErr.Error())
	}

	campaignService, campaignServiceErr := NewCampaignService(unitOfWork)
	if campaignServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", campaignServiceErr.Error())
	}

	return &AppServices{
		UserService:     userService,
		WalletService:   walletService,
		PaymentService:  paymentService,
		CampaignService: campaignService,
	}, nil
}
