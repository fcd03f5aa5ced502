package pgrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

type PaymentRepository struct {
	conn uow.DBTX
}

func NewPaymentRepository(conn uow.DBTX) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

const paymentColumns = `id, created_at, updated_at, completed_at, campaign_id, sender_id, recipient_id,
	amount, commission_amount, net_amount, currency, status, type, transaction_reference,
	payment_method, notes`

func (r *PaymentRepository) Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO payments (campaign_id, sender_id, recipient_id, amount, commission_amount, net_amount,
			currency, status, type, transaction_reference, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+paymentColumns,
		args.CampaignID, args.SenderID, args.RecipientID, args.Amount, args.CommissionAmount, args.NetAmount,
		args.Currency, args.Status, args.Type, args.TransactionReference, args.PaymentMethod, args.Notes)

	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "creating payment")
	}
	return payment, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)

	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by id %s", id)
	}
	return payment, nil
}

// LockByID возвращает платеж, заблокировав строку до конца транзакции. Используется
// в операциях выпуска и возврата эскроу, чтобы проверка статуса и запись шли атомарно.
func (r *PaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	if _, err := r.conn.Exec(ctx, `SET LOCAL lock_timeout = '`+lockTimeout+`'`); err != nil {
		return nil, convertErr(err, "setting lock timeout")
	}

	row := r.conn.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)

	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "locking payment by id %s", id)
	}
	return payment, nil
}

func (r *PaymentRepository) GetByCampaignID(ctx context.Context, campaignID uuid.UUID) ([]domain.Payment, error) {
	return r.getList(ctx, `campaign_id = $1`, campaignID)
}

func (r *PaymentRepository) GetBySenderID(ctx context.Context, senderID uuid.UUID) ([]domain.Payment, error) {
	return r.getList(ctx, `sender_id = $1`, senderID)
}

func (r *PaymentRepository) GetByRecipientID(ctx context.Context, recipientID uuid.UUID) ([]domain.Payment, error) {
	return r.getList(ctx, `recipient_id = $1`, recipientID)
}

// GetForVerification возвращает ожидающие подтверждения пополнения — платежи типа
// WalletDeposit в статусе Pending с непустым внешним референсом. Старые первыми.
func (r *PaymentRepository) GetForVerification(ctx context.Context, limit uint) ([]domain.Payment, error) {
	limitVal, limitErr := safeConvertUintToInt32(limit)
	if limitErr != nil {
		return nil, convertErr(limitErr, "getting payments for verification")
	}

	rows, err := r.conn.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE type = $1 AND status = $2 AND transaction_reference <> ''
		ORDER BY created_at
		LIMIT $3`,
		domain.PaymentTypeWalletDeposit, domain.PaymentStatusPending, limitVal)
	if err != nil {
		return nil, convertErr(err, "getting payments for verification")
	}
	return collectPayments(rows, "getting payments for verification")
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	args repoargs.PaymentStatusUpdate,
) (*domain.Payment, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE payments SET status = $2, completed_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns,
		args.ID, args.Status, args.CompletedAt)

	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "updating status of payment %s", args.ID)
	}
	return payment, nil
}

// Release пишет получателя, статус и метку завершения одним запросом.
func (r *PaymentRepository) Release(ctx context.Context, args repoargs.PaymentRelease) (*domain.Payment, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE payments SET recipient_id = $2, status = $3, completed_at = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns,
		args.ID, args.RecipientID, args.Status, args.CompletedAt)

	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "releasing payment %s", args.ID)
	}
	return payment, nil
}

func (r *PaymentRepository) getList(ctx context.Context, where string, arg any) ([]domain.Payment, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE `+where+`
		ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, convertErr(err, "getting payments")
	}
	return collectPayments(rows, "getting payments")
}

func collectPayments(rows pgx.Rows, msg string) ([]domain.Payment, error) {
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "%s", msg)
		}
		payments = append(payments, *payment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "%s", msg)
	}
	return payments, nil
}

func scanPayment(row scannable) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt, &p.CampaignID, &p.SenderID,
		&p.RecipientID, &p.Amount, &p.CommissionAmount, &p.NetAmount, &p.Currency, &p.Status, &p.Type,
		&p.TransactionReference, &p.PaymentMethod, &p.Notes)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &p, nil
}
