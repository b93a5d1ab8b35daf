package core

import "errors"

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidDueDay          = errors.New("invalid due day")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrEmptyName              = errors.New("empty name")
	ErrNameTooLong            = errors.New("name too long (max 200 characters)")
	ErrBillNotFound           = errors.New("bill not found")
)
