// Package queue holds the ticket lifecycle: booking with a sequential
// queue number, status transitions, waiting-position computation, and the
// destructive clear-all used when the restaurant opens a fresh day.
package queue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"restoq/queue-service/internal/models"
	"restoq/queue-service/internal/sequence"
	"restoq/queue-service/internal/store"

	"github.com/google/uuid"
)

type Service struct {
	tickets      store.TicketStore
	seq          *sequence.Allocator
	sequenceName string
	numberPrefix string

	now   func() time.Time
	newID func() string
}

type Options struct {
	// SequenceName is the counter that numbers tickets, "queue" by default.
	SequenceName string
	// NumberPrefix is prepended to the zero-padded sequence value, "A" by
	// default, so ticket 7 displays as A007.
	NumberPrefix string
}

type ClearResult struct {
	TicketsDeleted int  `json:"queues_deleted"`
	CounterReset   bool `json:"counter_reset"`
}

func NewService(tickets store.TicketStore, seq *sequence.Allocator, options Options) *Service {
	name := options.SequenceName
	if name == "" {
		name = "queue"
	}
	prefix := options.NumberPrefix
	if prefix == "" {
		prefix = "A"
	}
	return &Service{
		tickets:      tickets,
		seq:          seq,
		sequenceName: name,
		numberPrefix: prefix,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// FormatNumber renders a sequence value as a display number: zero-padded
// to three digits, unpadded beyond that (A007, A1523).
func FormatNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// Create books a ticket: allocates the next sequence value, assigns a
// fresh id, and persists the ticket in waiting status.
func (s *Service) Create(ctx context.Context, name, phone string, pax int) (models.Ticket, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return models.Ticket{}, fmt.Errorf("%w: name is required", store.ErrValidation)
	}
	if phone == "" {
		return models.Ticket{}, fmt.Errorf("%w: phone is required", store.ErrValidation)
	}
	if pax < 1 {
		return models.Ticket{}, fmt.Errorf("%w: pax must be at least 1", store.ErrValidation)
	}

	seq, err := s.seq.Next(ctx, s.sequenceName)
	if err != nil {
		return models.Ticket{}, err
	}

	ticket := models.Ticket{
		ID:          s.newID(),
		Name:        name,
		Phone:       phone,
		Pax:         pax,
		Status:      models.StatusWaiting,
		QueueNumber: FormatNumber(s.numberPrefix, seq),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.tickets.InsertTicket(ctx, ticket); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Ticket, error) {
	ticket, found, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if !found {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return ticket, nil
}

// List returns tickets ascending by creation time. An empty status returns
// all tickets; an unknown status simply matches nothing.
func (s *Service) List(ctx context.Context, status string) ([]models.Ticket, error) {
	tickets, err := s.tickets.ListTickets(ctx, status)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
	return tickets, nil
}

// SetStatus moves a ticket along the lifecycle. Setting the current status
// again is a no-op; any edge outside the transition table is rejected, so
// completed and cancelled tickets never change again.
func (s *Service) SetStatus(ctx context.Context, id, status string) (models.Ticket, error) {
	if !models.KnownStatus(status) {
		return models.Ticket{}, fmt.Errorf("%w: unknown status %q", store.ErrValidation, status)
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if ticket.Status == status {
		return ticket, nil
	}
	if !store.ValidTransition(ticket.Status, status) {
		return models.Ticket{}, fmt.Errorf("%w: %s -> %s", store.ErrInvalidState, ticket.Status, status)
	}

	matched, err := s.tickets.UpdateTicketStatus(ctx, id, status)
	if err != nil {
		return models.Ticket{}, err
	}
	if !matched {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return s.Get(ctx, id)
}

// WaitingPosition is the zero-based rank of a ticket among waiting
// tickets, ordered by creation time. A ticket that exists but is not in
// the waiting set reports position 0; the value is only meaningful for
// waiting tickets.
func (s *Service) WaitingPosition(ctx context.Context, id string) (int, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}

	waiting, err := s.List(ctx, models.StatusWaiting)
	if err != nil {
		return 0, err
	}
	for i, ticket := range waiting {
		if ticket.ID == id {
			return i, nil
		}
	}
	return 0, nil
}

// Delete removes one ticket. Admin primitive, not part of the guided
// lifecycle.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.tickets.DeleteTicket(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrTicketNotFound
	}
	return nil
}

// ClearAll deletes every ticket and resets the sequence counter so the
// next booking starts over at 1. Irreversible; the admin UI confirms
// before calling it.
func (s *Service) ClearAll(ctx context.Context) (ClearResult, error) {
	deleted, err := s.tickets.DeleteAllTickets(ctx)
	if err != nil {
		return ClearResult{}, err
	}
	reset, err := s.seq.Reset(ctx, s.sequenceName)
	if err != nil {
		return ClearResult{}, err
	}
	return ClearResult{TicketsDeleted: deleted, CounterReset: reset}, nil
}
