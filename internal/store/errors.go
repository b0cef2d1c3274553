package store

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidState   = errors.New("invalid ticket state")
	ErrValidation     = errors.New("invalid request")
	ErrStore          = errors.New("store failure")
	ErrProtocol       = errors.New("malformed store response")
)
