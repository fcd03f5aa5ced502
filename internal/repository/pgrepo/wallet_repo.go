package pgrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

// lockTimeout ограничивает ожидание блокировки строки кошелька. Выставляется
// через SET LOCAL, поэтому действует только внутри текущей транзакции.
const lockTimeout = "3s"

type WalletRepository struct {
	conn uow.DBTX
}

func NewWalletRepository(conn uow.DBTX) *WalletRepository {
	return &WalletRepository{conn: conn}
}

const walletColumns = `id, created_at, updated_at, user_id, balance, currency`

func (r *WalletRepository) Create(ctx context.Context, args repoargs.CreateWallet) (*domain.Wallet, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, 0, $2)
		RETURNING `+walletColumns,
		args.UserID, args.Currency)

	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet for user %s", args.UserID)
	}
	return wallet, nil
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)

	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "finding wallet by user id %s", userID)
	}
	return wallet, nil
}

// LockByUserID возвращает кошелек юзера, заблокировав строку до конца транзакции
// (SELECT ... FOR UPDATE). Вызывается только внутри uow.Do. Если блокировку не удалось
// получить за lockTimeout, вернется ошибка domain.ErrLockTimeout.
func (r *WalletRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	if err := r.setLockTimeout(ctx); err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)

	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "locking wallet by user id %s", userID)
	}
	return wallet, nil
}

// LockByIDs блокирует несколько кошельков за один запрос. Строки блокируются строго
// в порядке возрастания id — это исключает дедлок двух встречных переводов.
// Результат также отсортирован по id.
func (r *WalletRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Wallet, error) {
	if err := r.setLockTimeout(ctx); err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+walletColumns+` FROM wallets
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, convertErr(err, "locking wallets")
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		wallet, scanErr := scanWallet(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "locking wallets")
		}
		wallets = append(wallets, *wallet)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "locking wallets")
	}
	return wallets, nil
}

func (r *WalletRepository) UpdateBalance(
	ctx context.Context,
	walletID uuid.UUID,
	balance decimal.Decimal,
) (*domain.Wallet, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE wallets SET balance = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+walletColumns,
		walletID, balance)

	wallet, err := scanWallet(row)
	if err != nil {
		return nil, convertErr(err, "updating balance of wallet %s", walletID)
	}
	return wallet, nil
}

const walletTransactionColumns = `id, created_at, wallet_id, payment_id, amount, balance_after,
	type, description, reference`

func (r *WalletRepository) CreateTransaction(
	ctx context.Context,
	args repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO wallet_transactions (wallet_id, payment_id, amount, balance_after, type, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+walletTransactionColumns,
		args.WalletID, args.PaymentID, args.Amount, args.BalanceAfter, args.Type, args.Description, args.Reference)

	transaction, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet transaction")
	}
	return transaction, nil
}

// GetTransactions возвращает все транзакции кошелька, новые первыми.
func (r *WalletRepository) GetTransactions(
	ctx context.Context,
	walletID uuid.UUID,
) ([]domain.WalletTransaction, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+walletTransactionColumns+` FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC`, walletID)
	if err != nil {
		return nil, convertErr(err, "getting transactions of wallet %s", walletID)
	}
	defer rows.Close()

	var transactions []domain.WalletTransaction
	for rows.Next() {
		transaction, scanErr := scanWalletTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting transactions of wallet %s", walletID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting transactions of wallet %s", walletID)
	}
	return transactions, nil
}

func (r *WalletRepository) setLockTimeout(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, `SET LOCAL lock_timeout = '`+lockTimeout+`'`); err != nil {
		return convertErr(err, "setting lock timeout")
	}
	return nil
}

func scanWallet(row scannable) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt, &w.UserID, &w.Balance, &w.Currency)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &w, nil
}

func scanWalletTransaction(row scannable) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.WalletID, &t.PaymentID, &t.Amount, &t.BalanceAfter,
		&t.Type, &t.Description, &t.Reference)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &t, nil
}
