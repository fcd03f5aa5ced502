package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/creator-market/internal/domain"
)

const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	lockNotAvailableCode = "55P03"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Особенности:
//   - pgx.ErrNoRows возвращается как ErrRecordNotFound из domain.
//   - Дубликаты ключей (uniqueViolationCode) — как ErrDuplicateKey.
//   - Нарушение check-ограничений (checkViolationCode) — как ErrInvalidArgument.
//   - Истекший lock_timeout (lockNotAvailableCode) — как ErrLockTimeout, операцию можно повторить.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case checkViolationCode:
			errType = domain.ErrInvalidArgument
		case lockNotAvailableCode:
			errType = domain.ErrLockTimeout
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
