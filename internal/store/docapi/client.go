// Package docapi implements the ticket and counter stores against a
// MongoDB-proxy HTTP API: three POST endpoints (mongoatlasget,
// mongoatlasupdate, mongoatlasdelete) exchanging JSON envelopes.
package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"restoq/queue-service/internal/models"
	"restoq/queue-service/internal/store"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	ticketsCollection  = "queue"
	countersCollection = "counters"

	defaultTimeout   = 10 * time.Second
	defaultListLimit = 100
)

type Client struct {
	baseURL   string
	client    *http.Client
	listLimit int
}

type Options struct {
	Timeout   time.Duration
	ListLimit int
}

func New(baseURL string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := options.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		listLimit: limit,
	}
}

var (
	_ store.TicketStore  = (*Client)(nil)
	_ store.CounterStore = (*Client)(nil)
)

type getRequest struct {
	Collection string `json:"collection"`
	Filter     Filter `json:"filter"`
	Sort       Sort   `json:"sort"`
	Limit      int    `json:"limit"`
}

type updateRequest struct {
	Collection string `json:"collection"`
	Filter     Filter `json:"filter"`
	Data       any    `json:"data"`
	Upsert     bool   `json:"upsert"`
}

type deleteRequest struct {
	Collection string `json:"collection"`
	Filter     Filter `json:"filter"`
	DeleteMany bool   `json:"delete_many"`
}

type envelope struct {
	Status        string          `json:"status"`
	Code          int             `json:"code"`
	Data          json.RawMessage `json:"data"`
	MatchedCount  int             `json:"matched_count"`
	ModifiedCount int             `json:"modified_count"`
	DeletedCount  int             `json:"deleted_count"`
	Message       string          `json:"message"`
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return envelope{}, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: %s: %v", store.ErrStore, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return envelope{}, fmt.Errorf("%w: read %s response: %v", store.ErrStore, endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %s: %v", store.ErrProtocol, endpoint, err)
	}
	if env.Status != "success" {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("status %q", env.Status)
		}
		return envelope{}, fmt.Errorf("%w: %s: %s", store.ErrStore, endpoint, message)
	}
	return env, nil
}

func (c *Client) get(ctx context.Context, collection string, filter Filter, sort Sort, limit int) (json.RawMessage, error) {
	env, err := c.post(ctx, "mongoatlasget", getRequest{
		Collection: collection,
		Filter:     filter,
		Sort:       sort,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) upsert(ctx context.Context, collection string, filter Filter, data any, upsert bool) (envelope, error) {
	return c.post(ctx, "mongoatlasupdate", updateRequest{
		Collection: collection,
		Filter:     filter,
		Data:       data,
		Upsert:     upsert,
	})
}

func (c *Client) delete(ctx context.Context, collection string, filter Filter, many bool) (envelope, error) {
	return c.post(ctx, "mongoatlasdelete", deleteRequest{
		Collection: collection,
		Filter:     filter,
		DeleteMany: many,
	})
}

func (c *Client) InsertTicket(ctx context.Context, ticket models.Ticket) error {
	// Upsert keyed on the ticket id keeps creation idempotent: a retry with
	// the same id replaces the identical document instead of duplicating it.
	_, err := c.upsert(ctx, ticketsCollection, Filter{}.Eq("_id", ticket.ID), ticket, true)
	return err
}

func (c *Client) GetTicket(ctx context.Context, id string) (models.Ticket, bool, error) {
	data, err := c.get(ctx, ticketsCollection, Filter{}.Eq("_id", id), Sort{}, 1)
	if err != nil {
		return models.Ticket{}, false, err
	}
	tickets, err := decodeTickets(data)
	if err != nil {
		return models.Ticket{}, false, err
	}
	if len(tickets) == 0 {
		return models.Ticket{}, false, nil
	}
	return tickets[0], true, nil
}

func (c *Client) ListTickets(ctx context.Context, status string) ([]models.Ticket, error) {
	filter := Filter{}
	if status != "" {
		filter = filter.Eq("status", status)
	}
	data, err := c.get(ctx, ticketsCollection, filter, Sort{Field: "createdAt"}, c.listLimit)
	if err != nil {
		return nil, err
	}
	return decodeTickets(data)
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id, status string) (bool, error) {
	// The proxy applies data as a field-level update, so only status moves;
	// _id, queueNumber, createdAt and the contact fields stay untouched.
	patch := struct {
		Status string `json:"status"`
	}{Status: status}
	env, err := c.upsert(ctx, ticketsCollection, Filter{}.Eq("_id", id), patch, false)
	if err != nil {
		return false, err
	}
	return env.MatchedCount > 0, nil
}

func (c *Client) DeleteTicket(ctx context.Context, id string) (bool, error) {
	env, err := c.delete(ctx, ticketsCollection, Filter{}.Eq("_id", id), false)
	if err != nil {
		return false, err
	}
	return env.DeletedCount > 0, nil
}

func (c *Client) DeleteAllTickets(ctx context.Context) (int, error) {
	env, err := c.delete(ctx, ticketsCollection, Filter{}, true)
	if err != nil {
		return 0, err
	}
	return env.DeletedCount, nil
}

func (c *Client) GetCounter(ctx context.Context, name string) (models.Counter, bool, error) {
	data, err := c.get(ctx, countersCollection, Filter{}.Eq("name", name), Sort{}, 1)
	if err != nil {
		return models.Counter{}, false, err
	}
	var counters []models.Counter
	if len(data) > 0 {
		if err := json.Unmarshal(data, &counters); err != nil {
			return models.Counter{}, false, fmt.Errorf("%w: counters payload: %v", store.ErrProtocol, err)
		}
	}
	if len(counters) == 0 {
		return models.Counter{}, false, nil
	}
	return counters[0], true, nil
}

func (c *Client) PutCounter(ctx context.Context, counter models.Counter) error {
	_, err := c.upsert(ctx, countersCollection, Filter{}.Eq("name", counter.Name), counter, true)
	return err
}

func (c *Client) DeleteCounter(ctx context.Context, name string) (bool, error) {
	env, err := c.delete(ctx, countersCollection, Filter{}.Eq("name", name), false)
	if err != nil {
		return false, err
	}
	return env.DeletedCount > 0, nil
}

func decodeTickets(data json.RawMessage) ([]models.Ticket, error) {
	if len(data) == 0 {
		return []models.Ticket{}, nil
	}
	var tickets []models.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("%w: tickets payload: %v", store.ErrProtocol, err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}
