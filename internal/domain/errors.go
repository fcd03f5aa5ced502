package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrPasswordMissMatch = errors.New("password mismatch")

	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidState      = errors.New("invalid state")
	// ErrLockTimeout возвращается когда не удалось получить блокировку строки кошелька
	// за отведенное время. Операцию можно безопасно повторить.
	ErrLockTimeout = errors.New("lock timeout")
)

// InvalidTransitionError переход платежа в статус, недопустимый из текущего.
type InvalidTransitionError struct {
	From PaymentStatus
	To   PaymentStatus
}

func NewInvalidTransitionError(from, to PaymentStatus) error {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payment status transition %s -> %s is not allowed", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}
