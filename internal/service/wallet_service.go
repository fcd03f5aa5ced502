package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

// DefaultCurrency валюта кошельков по умолчанию.
const DefaultCurrency = "NPR"

// WalletService журнал кошельков: балансы юзеров и история операций.
//
// Каждая мутация (Deposit, Withdraw, Transfer) выполняется одной транзакцией БД:
// строка кошелька блокируется через SELECT ... FOR UPDATE, обновление баланса и запись
// в журнал коммитятся вместе. Благодаря этому баланс кошелька всегда равен сумме его
// транзакций, а два конкурентных списания не могут прочитать один и тот же баланс.
type WalletService struct {
	uow        uow.UOW
	walletRepo WalletRepository
}

func NewWalletService(u uow.UOW) (*WalletService, error) {
	walletRepo, walletRepoErr := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if walletRepoErr != nil {
		return nil, walletRepoErr
	}
	return &WalletService{
		uow:        u,
		walletRepo: walletRepo,
	}, nil
}

// GetOrCreate возвращает кошелек юзера, лениво создавая его при первом обращении.
// Если юзер не существует, вернется domain.ErrRecordNotFound.
func (s *WalletService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, findErr := s.walletRepo.FindByUserID(ctx, userID)
	if findErr == nil {
		return wallet, nil
	}
	if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("getting wallet: %w", findErr)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var createErr error
		wallet, createErr = createWallet(c, tx, userID)
		return createErr
	})
	if txErr != nil {
		// Конкурентное создание: кошелек уже появился, перечитываем.
		if errors.Is(txErr, domain.ErrDuplicateKey) {
			return s.walletRepo.FindByUserID(ctx, userID) //nolint:wrapcheck
		}
		return nil, fmt.Errorf("creating wallet: %w", txErr)
	}
	return wallet, nil
}

// Transactions возвращает все транзакции кошелька юзера, новые первыми.
func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID) ([]domain.WalletTransaction, error) {
	wallet, walletErr := s.GetOrCreate(ctx, userID)
	if walletErr != nil {
		return nil, walletErr
	}
	transactions, err := s.walletRepo.GetTransactions(ctx, wallet.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// LedgerEntryArgs аргументы одной записи журнала.
type LedgerEntryArgs struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description string
	Reference   string
	PaymentID   *uuid.UUID
}

// Deposit пополняет кошелек юзера на amount > 0 и пишет транзакцию типа Deposit.
func (s *WalletService) Deposit(ctx context.Context, args LedgerEntryArgs) (*domain.WalletTransaction, error) {
	if args.Type == "" {
		args.Type = domain.TransactionDeposit
	}

	var transaction *domain.WalletTransaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var creditErr error
		transaction, creditErr = s.CreditInTx(c, tx, args)
		return creditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("deposit: %w", txErr)
	}
	return transaction, nil
}

// Withdraw списывает amount > 0 с кошелька юзера и пишет транзакцию типа Withdrawal
// с отрицательной суммой. При нехватке средств вернется domain.ErrInsufficientFunds.
func (s *WalletService) Withdraw(ctx context.Context, args LedgerEntryArgs) (*domain.WalletTransaction, error) {
	if args.Type == "" {
		args.Type = domain.TransactionWithdrawal
	}

	var transaction *domain.WalletTransaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var debitErr error
		transaction, debitErr = s.DebitInTx(c, tx, args)
		return debitErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("withdraw: %w", txErr)
	}
	return transaction, nil
}

type TransferArgs struct {
	FromUserID  uuid.UUID
	ToUserID    uuid.UUID
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// TransferResult пара записей журнала одного перевода: списание у отправителя
// и зачисление получателю. Обе ссылаются на общий Reference.
type TransferResult struct {
	Debit  *domain.WalletTransaction
	Credit *domain.WalletTransaction
}

// Transfer переводит amount > 0 между кошельками двух разных юзеров: списание типа
// CampaignPayment у отправителя и зачисление типа CampaignEarning у получателя.
// Оба кошелька блокируются одним запросом в порядке возрастания id (см. WalletRepository.LockByIDs),
// поэтому два встречных перевода не могут вызвать дедлок.
func (s *WalletService) Transfer(ctx context.Context, args TransferArgs) (*TransferResult, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("transfer amount must be greater than zero: %w", domain.ErrInvalidArgument)
	}
	if args.FromUserID == args.ToUserID {
		return nil, fmt.Errorf("cannot transfer to the same wallet: %w", domain.ErrInvalidArgument)
	}

	var result TransferResult
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		walletRepo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		fromWallet, fromErr := findOrCreateWallet(c, tx, args.FromUserID)
		if fromErr != nil {
			return fromErr
		}
		toWallet, toErr := findOrCreateWallet(c, tx, args.ToUserID)
		if toErr != nil {
			return toErr
		}

		// Блокируем обе строки одним запросом, порядок по id фиксирован на уровне репозитория.
		locked, lockErr := walletRepo.LockByIDs(c, []uuid.UUID{fromWallet.ID, toWallet.ID})
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		for i := range locked {
			switch locked[i].ID {
			case fromWallet.ID:
				fromWallet = &locked[i]
			case toWallet.ID:
				toWallet = &locked[i]
			}
		}

		if fromWallet.Balance.LessThan(args.Amount) {
			return domain.ErrInsufficientFunds
		}

		debit, debitErr := applyEntry(c, walletRepo, fromWallet, repoargs.WalletTransactionCreate{
			WalletID:    fromWallet.ID,
			Amount:      args.Amount.Neg(),
			Type:        domain.TransactionCampaignPayment,
			Description: args.Description,
			Reference:   args.Reference,
		})
		if debitErr != nil {
			return debitErr
		}

		credit, creditErr := applyEntry(c, walletRepo, toWallet, repoargs.WalletTransactionCreate{
			WalletID:    toWallet.ID,
			Amount:      args.Amount,
			Type:        domain.TransactionCampaignEarning,
			Description: args.Description,
			Reference:   args.Reference,
		})
		if creditErr != nil {
			return creditErr
		}

		result = TransferResult{Debit: debit, Credit: credit}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("transfer: %w", txErr)
	}
	return &result, nil
}

// CreditInTx зачисляет args.Amount > 0 на кошелек юзера внутри открытой транзакции tx.
// Кошелек блокируется до конца транзакции.
func (s *WalletService) CreditInTx(
	ctx context.Context,
	tx uow.TX,
	args LedgerEntryArgs,
) (*domain.WalletTransaction, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero: %w", domain.ErrInvalidArgument)
	}

	walletRepo, wallet, err := lockOrCreateWallet(ctx, tx, args.UserID)
	if err != nil {
		return nil, err
	}

	return applyEntry(ctx, walletRepo, wallet, repoargs.WalletTransactionCreate{
		WalletID:    wallet.ID,
		PaymentID:   args.PaymentID,
		Amount:      args.Amount,
		Type:        args.Type,
		Description: args.Description,
		Reference:   args.Reference,
	})
}

// DebitInTx списывает args.Amount > 0 с кошелька юзера внутри открытой транзакции tx.
// В журнал сумма пишется со знаком минус. При нехватке средств — domain.ErrInsufficientFunds.
func (s *WalletService) DebitInTx(
	ctx context.Context,
	tx uow.TX,
	args LedgerEntryArgs,
) (*domain.WalletTransaction, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero: %w", domain.ErrInvalidArgument)
	}

	walletRepo, wallet, err := lockOrCreateWallet(ctx, tx, args.UserID)
	if err != nil {
		return nil, err
	}

	if wallet.Balance.LessThan(args.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	return applyEntry(ctx, walletRepo, wallet, repoargs.WalletTransactionCreate{
		WalletID:    wallet.ID,
		PaymentID:   args.PaymentID,
		Amount:      args.Amount.Neg(),
		Type:        args.Type,
		Description: args.Description,
		Reference:   args.Reference,
	})
}

// applyEntry атомарный шаг журнала: новый баланс = старый + amount, баланс и запись
// с балансом-после пишутся в одной транзакции вызывающего.
func applyEntry(
	ctx context.Context,
	walletRepo WalletRepository,
	wallet *domain.Wallet,
	args repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	newBalance := wallet.Balance.Add(args.Amount)

	updated, updateErr := walletRepo.UpdateBalance(ctx, wallet.ID, newBalance)
	if updateErr != nil {
		return nil, updateErr //nolint:wrapcheck
	}
	wallet.Balance = updated.Balance

	args.BalanceAfter = newBalance
	transaction, createErr := walletRepo.CreateTransaction(ctx, args)
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}
	return transaction, nil
}

// lockOrCreateWallet возвращает заблокированный кошелек юзера, создавая его при отсутствии.
// Свежесозданная строка видна только текущей транзакции, отдельная блокировка ей не нужна.
func lockOrCreateWallet(ctx context.Context, tx uow.TX, userID uuid.UUID) (WalletRepository, *domain.Wallet, error) {
	walletRepo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if repoErr != nil {
		return nil, nil, repoErr //nolint:wrapcheck
	}

	wallet, lockErr := walletRepo.LockByUserID(ctx, userID)
	if lockErr == nil {
		return walletRepo, wallet, nil
	}
	if !errors.Is(lockErr, domain.ErrRecordNotFound) {
		return nil, nil, lockErr //nolint:wrapcheck
	}

	wallet, createErr := createWallet(ctx, tx, userID)
	if createErr != nil {
		return nil, nil, createErr
	}
	return walletRepo, wallet, nil
}

// findOrCreateWallet как lockOrCreateWallet, но без блокировки строки.
func findOrCreateWallet(ctx context.Context, tx uow.TX, userID uuid.UUID) (*domain.Wallet, error) {
	walletRepo, repoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}

	wallet, findErr := walletRepo.FindByUserID(ctx, userID)
	if findErr == nil {
		return wallet, nil
	}
	if !errors.Is(findErr, domain.ErrRecordNotFound) {
		return nil, findErr //nolint:wrapcheck
	}
	return createWallet(ctx, tx, userID)
}

// createWallet создает кошелек с нулевым балансом, предварительно убедившись что юзер существует.
func createWallet(ctx context.Context, tx uow.TX, userID uuid.UUID) (*domain.Wallet, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	walletRepo, walletRepoErr := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
	if walletRepoErr != nil {
		return nil, walletRepoErr //nolint:wrapcheck
	}

	if _, userErr := userRepo.FindByID(ctx, userID); userErr != nil {
		return nil, fmt.Errorf("verifying wallet owner: %w", userErr)
	}

	wallet, createErr := walletRepo.Create(ctx, repoargs.CreateWallet{
		UserID:   userID,
		Currency: DefaultCurrency,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}
	return wallet, nil
}
