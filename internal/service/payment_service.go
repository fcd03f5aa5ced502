package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

// platformCommissionRate комиссия платформы, фиксированные 10% от суммы платежа.
var platformCommissionRate = decimal.NewFromFloat(0.10)

// PaymentService платежи и эскроу поверх журнала кошельков.
//
// Машина статусов платежа: Pending -> InEscrow -> Released; Refunded и Failed —
// альтернативные конечные статусы. Эскроу-платеж создается сразу в InEscrow
// (деньги списаны с бренда и удерживаются платформой), выпуск переводит его в Released
// и зачисляет net-сумму инфлюенсеру, а комиссию — кошельку платформы.
type PaymentService struct {
	uow            uow.UOW
	paymentRepo    PaymentRepository
	campaignRepo   CampaignRepository
	ledger         WalletLedger
	platformUserID uuid.UUID
}

func NewPaymentService(u uow.UOW, ledger WalletLedger, platformUserID uuid.UUID) (*PaymentService, error) {
	paymentRepo, paymentRepoErr := uow.GetRepositoryAs[PaymentRepository](
		u, uow.RepositoryName(repoargs.PaymentRepoName))
	if paymentRepoErr != nil {
		return nil, paymentRepoErr
	}
	campaignRepo, campaignRepoErr := uow.GetRepositoryAs[CampaignRepository](
		u, uow.RepositoryName(repoargs.CampaignRepoName))
	if campaignRepoErr != nil {
		return nil, campaignRepoErr
	}
	return &PaymentService{
		uow:            u,
		paymentRepo:    paymentRepo,
		campaignRepo:   campaignRepo,
		ledger:         ledger,
		platformUserID: platformUserID,
	}, nil
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payment, nil
}

func (s *PaymentService) GetByCampaign(ctx context.Context, campaignID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

func (s *PaymentService) GetBySender(ctx context.Context, senderID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetBySenderID(ctx, senderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

func (s *PaymentService) GetByRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetByRecipientID(ctx, recipientID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

type CreatePaymentArgs struct {
	CampaignID           *uuid.UUID
	RecipientID          uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	Type                 string
	TransactionReference string
	PaymentMethod        string
	Notes                string
}

// Create создает платеж в статусе Pending. Комиссия считается в момент создания:
// commission = amount * 10%, net = amount - commission. Неизвестный тип трактуется
// как CampaignDeposit.
func (s *PaymentService) Create(
	ctx context.Context,
	senderID uuid.UUID,
	args CreatePaymentArgs,
) (*domain.Payment, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be greater than zero: %w", domain.ErrInvalidArgument)
	}

	paymentType, ok := domain.ParsePaymentType(args.Type)
	if !ok {
		paymentType = domain.PaymentTypeCampaignDeposit
	}
	currency := args.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	commission := args.Amount.Mul(platformCommissionRate)
	payment, createErr := s.paymentRepo.Create(ctx, repoargs.PaymentCreate{
		CampaignID:           args.CampaignID,
		SenderID:             senderID,
		RecipientID:          args.RecipientID,
		Amount:               args.Amount,
		CommissionAmount:     commission,
		NetAmount:            args.Amount.Sub(commission),
		Currency:             currency,
		Status:               domain.PaymentStatusPending,
		Type:                 paymentType,
		TransactionReference: args.TransactionReference,
		PaymentMethod:        args.PaymentMethod,
		Notes:                args.Notes,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating payment: %w", createErr)
	}
	return payment, nil
}

// FundEscrow помещает amount в эскроу кампании: создает платеж типа CampaignDeposit
// в статусе InEscrow (отправитель — бренд, получатель — платформа) и списывает amount
// с кошелька бренда, указывая id платежа в качестве референса. Обе записи коммитятся
// одной транзакцией.
//
// Требования: кампания существует (иначе domain.ErrRecordNotFound) и ей назначен
// инфлюенсер (иначе domain.ErrInvalidState); amount > 0.
func (s *PaymentService) FundEscrow(
	ctx context.Context,
	campaignID uuid.UUID,
	amount decimal.Decimal,
) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("escrow amount must be greater than zero: %w", domain.ErrInvalidArgument)
	}

	var payment *domain.Payment
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, campaignRepo, reposErr := paymentRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		campaign, campaignErr := campaignRepo.FindByID(c, campaignID)
		if campaignErr != nil {
			return campaignErr //nolint:wrapcheck
		}
		if campaign.InfluencerID == nil {
			return fmt.Errorf("campaign does not have an assigned influencer: %w", domain.ErrInvalidState)
		}

		commission := amount.Mul(platformCommissionRate)
		var createErr error
		payment, createErr = paymentRepo.Create(c, repoargs.PaymentCreate{
			CampaignID:       &campaign.ID,
			SenderID:         campaign.BrandID,
			RecipientID:      s.platformUserID,
			Amount:           amount,
			CommissionAmount: commission,
			NetAmount:        amount.Sub(commission),
			Currency:         DefaultCurrency,
			Status:           domain.PaymentStatusInEscrow,
			Type:             domain.PaymentTypeCampaignDeposit,
			PaymentMethod:    "Wallet",
			Notes:            "Escrow payment for campaign: " + campaign.Title,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		_, debitErr := s.ledger.DebitInTx(c, tx, LedgerEntryArgs{
			UserID:      campaign.BrandID,
			Amount:      amount,
			Type:        domain.TransactionWithdrawal,
			Description: "Escrow payment for campaign: " + campaign.Title,
			Reference:   payment.ID.String(),
			PaymentID:   &payment.ID,
		})
		return debitErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("funding escrow: %w", txErr)
	}
	return payment, nil
}

// ReleaseEscrow выпускает эскроу-платеж: получателем становится инфлюенсер кампании,
// статус переходит в Released, net-сумма зачисляется на кошелек инфлюенсера, комиссия —
// на кошелек платформы. Все записи идут одной транзакцией, строка платежа блокируется
// на время операции.
//
// Платеж должен быть типа CampaignDeposit и в статусе InEscrow — повторный выпуск
// уже выпущенного платежа вернет domain.ErrInvalidState и не приведет к повторному
// зачислению.
func (s *PaymentService) ReleaseEscrow(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var released *domain.Payment
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, campaignRepo, reposErr := paymentRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		payment, lockErr := paymentRepo.LockByID(c, paymentID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if payment.Type != domain.PaymentTypeCampaignDeposit {
			return fmt.Errorf("payment is not an escrow payment: %w", domain.ErrInvalidState)
		}
		if payment.Status != domain.PaymentStatusInEscrow {
			return domain.NewInvalidTransitionError(payment.Status, domain.PaymentStatusReleased)
		}
		if payment.CampaignID == nil {
			return fmt.Errorf("escrow payment is not linked to a campaign: %w", domain.ErrInvalidState)
		}

		campaign, campaignErr := campaignRepo.FindByID(c, *payment.CampaignID)
		if campaignErr != nil {
			return campaignErr //nolint:wrapcheck
		}
		if campaign.InfluencerID == nil {
			return fmt.Errorf("campaign does not have an assigned influencer: %w", domain.ErrInvalidState)
		}

		var releaseErr error
		released, releaseErr = paymentRepo.Release(c, repoargs.PaymentRelease{
			ID:          payment.ID,
			RecipientID: *campaign.InfluencerID,
			Status:      domain.PaymentStatusReleased,
			CompletedAt: time.Now(),
		})
		if releaseErr != nil {
			return releaseErr //nolint:wrapcheck
		}

		if _, creditErr := s.ledger.CreditInTx(c, tx, LedgerEntryArgs{
			UserID:      *campaign.InfluencerID,
			Amount:      payment.NetAmount,
			Type:        domain.TransactionDeposit,
			Description: "Payment for campaign: " + campaign.Title,
			Reference:   payment.ID.String(),
			PaymentID:   &payment.ID,
		}); creditErr != nil {
			return creditErr //nolint:wrapcheck
		}

		// Комиссия уходит на кошелек платформы, а не испаряется.
		if payment.CommissionAmount.IsPositive() {
			if _, feeErr := s.ledger.CreditInTx(c, tx, LedgerEntryArgs{
				UserID:      s.platformUserID,
				Amount:      payment.CommissionAmount,
				Type:        domain.TransactionCommissionFee,
				Description: "Commission for campaign: " + campaign.Title,
				Reference:   payment.ID.String(),
				PaymentID:   &payment.ID,
			}); feeErr != nil {
				return feeErr //nolint:wrapcheck
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("releasing escrow: %w", txErr)
	}
	return released, nil
}

// RefundEscrow возвращает эскроу-платеж бренду: статус переходит в Refunded, полная
// сумма зачисляется обратно на кошелек отправителя транзакцией типа Refund.
// Допустим только для платежей типа CampaignDeposit в статусе InEscrow.
func (s *PaymentService) RefundEscrow(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var refunded *domain.Payment
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, _, reposErr := paymentRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		payment, lockErr := paymentRepo.LockByID(c, paymentID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if payment.Type != domain.PaymentTypeCampaignDeposit {
			return fmt.Errorf("payment is not an escrow payment: %w", domain.ErrInvalidState)
		}
		if payment.Status != domain.PaymentStatusInEscrow {
			return domain.NewInvalidTransitionError(payment.Status, domain.PaymentStatusRefunded)
		}

		now := time.Now()
		var updateErr error
		refunded, updateErr = paymentRepo.UpdateStatus(c, repoargs.PaymentStatusUpdate{
			ID:          payment.ID,
			Status:      domain.PaymentStatusRefunded,
			CompletedAt: &now,
		})
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}

		_, creditErr := s.ledger.CreditInTx(c, tx, LedgerEntryArgs{
			UserID:      payment.SenderID,
			Amount:      payment.Amount,
			Type:        domain.TransactionRefund,
			Description: "Escrow refund",
			Reference:   payment.ID.String(),
			PaymentID:   &payment.ID,
		})
		return creditErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("refunding escrow: %w", txErr)
	}
	return refunded, nil
}

// UpdateStatus переводит платеж в указанный статус. Неизвестная строка статуса —
// domain.ErrInvalidArgument; переходы из конечных статусов запрещены. При переходе
// в Released проставляется completed_at.
//
// Денег этот метод не двигает — для эскроу есть ReleaseEscrow/RefundEscrow.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status string) (*domain.Payment, error) {
	newStatus, ok := domain.ParsePaymentStatus(status)
	if !ok {
		return nil, fmt.Errorf("invalid payment status %q: %w", status, domain.ErrInvalidArgument)
	}

	var updated *domain.Payment
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, _, reposErr := paymentRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		payment, lockErr := paymentRepo.LockByID(c, paymentID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if payment.Status == newStatus {
			updated = payment
			return nil
		}
		if payment.Status.IsTerminal() {
			return domain.NewInvalidTransitionError(payment.Status, newStatus)
		}

		completedAt := payment.CompletedAt
		if newStatus == domain.PaymentStatusReleased {
			now := time.Now()
			completedAt = &now
		}

		var updateErr error
		updated, updateErr = paymentRepo.UpdateStatus(c, repoargs.PaymentStatusUpdate{
			ID:          payment.ID,
			Status:      newStatus,
			CompletedAt: completedAt,
		})
		return updateErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating payment status: %w", txErr)
	}
	return updated, nil
}

// PaymentsForVerification возвращает пополнения, ожидающие подтверждения платежного шлюза.
func (s *PaymentService) PaymentsForVerification(ctx context.Context, limit uint) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetForVerification(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

// VerificationArgs результат проверки одного пополнения во внешнем шлюзе.
type VerificationArgs struct {
	Error     error
	PaymentID uuid.UUID
	Confirmed bool
}

// ApplyVerification применяет результаты проверки пополнений. Подтвержденный платеж
// переходит в Released, и его полная сумма зачисляется на кошелек отправителя;
// отклоненный — в Failed. Каждый платеж обрабатывается отдельной транзакцией:
// ошибка одного не мешает остальным. Платежи с ошибкой проверки остаются Pending
// и попадут в следующую итерацию.
func (s *PaymentService) ApplyVerification(ctx context.Context, updates []VerificationArgs) error {
	var lastErr error
	for _, update := range updates {
		if update.Error != nil {
			continue
		}
		if err := s.applyVerificationResult(ctx, update); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("applying verification results: %w", lastErr)
	}
	return nil
}

func (s *PaymentService) applyVerificationResult(ctx context.Context, update VerificationArgs) error {
	return s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, _, reposErr := paymentRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		payment, lockErr := paymentRepo.LockByID(c, update.PaymentID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		// Кто-то успел обработать платеж раньше — молча выходим.
		if payment.Status != domain.PaymentStatusPending {
			return nil
		}

		now := time.Now()
		if !update.Confirmed {
			_, failErr := paymentRepo.UpdateStatus(c, repoargs.PaymentStatusUpdate{
				ID:          payment.ID,
				Status:      domain.PaymentStatusFailed,
				CompletedAt: &now,
			})
			return failErr //nolint:wrapcheck
		}

		if _, updateErr := paymentRepo.UpdateStatus(c, repoargs.PaymentStatusUpdate{
			ID:          payment.ID,
			Status:      domain.PaymentStatusReleased,
			CompletedAt: &now,
		}); updateErr != nil {
			return updateErr //nolint:wrapcheck
		}

		_, creditErr := s.ledger.CreditInTx(c, tx, LedgerEntryArgs{
			UserID:      payment.SenderID,
			Amount:      payment.Amount,
			Type:        domain.TransactionDeposit,
			Description: "Wallet top-up via " + payment.PaymentMethod,
			Reference:   payment.TransactionReference,
			PaymentID:   &payment.ID,
		})
		return creditErr //nolint:wrapcheck
	})
}

func paymentRepos(tx uow.TX) (PaymentRepository, CampaignRepository, error) {
	paymentRepo, paymentErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
	if paymentErr != nil {
		return nil, nil, paymentErr //nolint:wrapcheck
	}
	campaignRepo, campaignErr := uow.GetAs[CampaignRepository](tx, uow.RepositoryName(repoargs.CampaignRepoName))
	if campaignErr != nil {
		return nil, nil, campaignErr //nolint:wrapcheck
	}
	return paymentRepo, campaignRepo, nil
}
