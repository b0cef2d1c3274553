package store

import (
	"context"

	"restoq/queue-service/internal/models"
)

// TicketStore is the persistence boundary for queue tickets. Every method
// is a remote round trip; implementations must map backend failures onto
// ErrStore and undecodable responses onto ErrProtocol.
type TicketStore interface {
	// InsertTicket creates the ticket unless a document with the same id
	// already exists, making creation idempotent under a caller-supplied id.
	InsertTicket(ctx context.Context, ticket models.Ticket) error
	GetTicket(ctx context.Context, id string) (models.Ticket, bool, error)
	// ListTickets returns tickets ascending by creation time. An empty
	// status returns every ticket regardless of status.
	ListTickets(ctx context.Context, status string) ([]models.Ticket, error)
	// UpdateTicketStatus writes the status field only and reports whether a
	// document matched.
	UpdateTicketStatus(ctx context.Context, id, status string) (bool, error)
	DeleteTicket(ctx context.Context, id string) (bool, error)
	// DeleteAllTickets removes every ticket and returns how many were deleted.
	DeleteAllTickets(ctx context.Context) (int, error)
}

// CounterStore persists named sequence counters. Read-then-write on the
// same counter is not atomic at this boundary; callers must serialize
// access (see sequence.Allocator).
type CounterStore interface {
	GetCounter(ctx context.Context, name string) (models.Counter, bool, error)
	PutCounter(ctx context.Context, counter models.Counter) error
	// DeleteCounter removes the counter so the next allocation restarts at 1.
	DeleteCounter(ctx context.Context, name string) (bool, error)
}
