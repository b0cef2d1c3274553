package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restoq/queue-service/internal/models"
	"restoq/queue-service/internal/queue"
	"restoq/queue-service/internal/store"
)

type fakeQueue struct {
	createFn   func(ctx context.Context, name, phone string, pax int) (models.Ticket, error)
	getFn      func(ctx context.Context, id string) (models.Ticket, error)
	listFn     func(ctx context.Context, status string) ([]models.Ticket, error)
	setFn      func(ctx context.Context, id, status string) (models.Ticket, error)
	positionFn func(ctx context.Context, id string) (int, error)
	deleteFn   func(ctx context.Context, id string) error
	clearFn    func(ctx context.Context) (queue.ClearResult, error)
}

func (f fakeQueue) Create(ctx context.Context, name, phone string, pax int) (models.Ticket, error) {
	if f.createFn == nil {
		return models.Ticket{}, nil
	}
	return f.createFn(ctx, name, phone, pax)
}

func (f fakeQueue) Get(ctx context.Context, id string) (models.Ticket, error) {
	if f.getFn == nil {
		return models.Ticket{}, nil
	}
	return f.getFn(ctx, id)
}

func (f fakeQueue) List(ctx context.Context, status string) ([]models.Ticket, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, status)
}

func (f fakeQueue) SetStatus(ctx context.Context, id, status string) (models.Ticket, error) {
	if f.setFn == nil {
		return models.Ticket{}, nil
	}
	return f.setFn(ctx, id, status)
}

func (f fakeQueue) WaitingPosition(ctx context.Context, id string) (int, error) {
	if f.positionFn == nil {
		return 0, nil
	}
	return f.positionFn(ctx, id)
}

func (f fakeQueue) Delete(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func (f fakeQueue) ClearAll(ctx context.Context) (queue.ClearResult, error) {
	if f.clearFn == nil {
		return queue.ClearResult{}, nil
	}
	return f.clearFn(ctx)
}

func sampleTicket() models.Ticket {
	return models.Ticket{
		ID:          "t1",
		Name:        "Somchai",
		Phone:       "0812345678",
		Pax:         2,
		Status:      models.StatusWaiting,
		QueueNumber: "A001",
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC),
	}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateQueue(t *testing.T) {
	handler := NewHandler(fakeQueue{
		createFn: func(ctx context.Context, name, phone string, pax int) (models.Ticket, error) {
			if name != "Somchai" || phone != "0812345678" || pax != 2 {
				t.Fatalf("create called with %q %q %d", name, phone, pax)
			}
			return sampleTicket(), nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodPost, "/api/queue", map[string]any{
		"name": "Somchai", "phone": "0812345678", "pax": 2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var ticket map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ticket["_id"] != "t1" || ticket["queueNumber"] != "A001" || ticket["status"] != "waiting" {
		t.Fatalf("response = %v", ticket)
	}
	if ticket["createdAt"] != "2025-03-01T12:00:01Z" {
		t.Fatalf("createdAt = %v", ticket["createdAt"])
	}
}

func TestCreateQueueValidationError(t *testing.T) {
	handler := NewHandler(fakeQueue{
		createFn: func(ctx context.Context, name, phone string, pax int) (models.Ticket, error) {
			return models.Ticket{}, fmt.Errorf("%w: name is required", store.ErrValidation)
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodPost, "/api/queue", map[string]any{
		"name": "", "phone": "0812345678", "pax": 2,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Error.Code != "invalid_request" {
		t.Fatalf("code = %q", res.Error.Code)
	}
}

func TestCreateQueueBadJSON(t *testing.T) {
	handler := NewHandler(fakeQueue{}).Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/queue", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListQueuePassesStatusFilter(t *testing.T) {
	var gotStatus string
	handler := NewHandler(fakeQueue{
		listFn: func(ctx context.Context, status string) ([]models.Ticket, error) {
			gotStatus = status
			return []models.Ticket{sampleTicket()}, nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue?status=waiting", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotStatus != "waiting" {
		t.Fatalf("status filter = %q, want waiting", gotStatus)
	}

	var tickets []models.Ticket
	if err := json.Unmarshal(rec.Body.Bytes(), &tickets); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" {
		t.Fatalf("tickets = %+v", tickets)
	}
}

func TestListQueueEmptyIsArray(t *testing.T) {
	handler := NewHandler(fakeQueue{}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("[]")) {
		t.Fatalf("body = %q, want []", body)
	}
}

func TestGetQueueNotFound(t *testing.T) {
	handler := NewHandler(fakeQueue{
		getFn: func(ctx context.Context, id string) (models.Ticket, error) {
			return models.Ticket{}, store.ErrTicketNotFound
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Error.Code != "ticket_not_found" {
		t.Fatalf("code = %q", res.Error.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	handler := NewHandler(fakeQueue{
		setFn: func(ctx context.Context, id, status string) (models.Ticket, error) {
			if id != "t1" || status != "called" {
				t.Fatalf("SetStatus called with %q %q", id, status)
			}
			ticket := sampleTicket()
			ticket.Status = models.StatusCalled
			return ticket, nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodPatch, "/api/queue/t1", map[string]any{"status": "called"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var ticket models.Ticket
	if err := json.Unmarshal(rec.Body.Bytes(), &ticket); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ticket.Status != models.StatusCalled {
		t.Fatalf("ticket status = %q, want called", ticket.Status)
	}
}

func TestUpdateStatusMissingField(t *testing.T) {
	handler := NewHandler(fakeQueue{}).Routes()

	rec := doRequest(t, handler, http.MethodPatch, "/api/queue/t1", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	handler := NewHandler(fakeQueue{
		setFn: func(ctx context.Context, id, status string) (models.Ticket, error) {
			return models.Ticket{}, fmt.Errorf("%w: completed -> waiting", store.ErrInvalidState)
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodPatch, "/api/queue/t1", map[string]any{"status": "waiting"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Error.Code != "invalid_state" {
		t.Fatalf("code = %q", res.Error.Code)
	}
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	handler := NewHandler(fakeQueue{
		setFn: func(ctx context.Context, id, status string) (models.Ticket, error) {
			return models.Ticket{}, fmt.Errorf("%w: unknown status %q", store.ErrValidation, status)
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodPatch, "/api/queue/t1", map[string]any{"status": "seated"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteQueue(t *testing.T) {
	handler := NewHandler(fakeQueue{
		deleteFn: func(ctx context.Context, id string) error {
			if id != "t1" {
				t.Fatalf("Delete called with %q", id)
			}
			return nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodDelete, "/api/queue/t1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDeleteQueueNotFound(t *testing.T) {
	handler := NewHandler(fakeQueue{
		deleteFn: func(ctx context.Context, id string) error {
			return store.ErrTicketNotFound
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodDelete, "/api/queue/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWaitingPositionEndpoint(t *testing.T) {
	handler := NewHandler(fakeQueue{
		positionFn: func(ctx context.Context, id string) (int, error) {
			if id != "t3" {
				t.Fatalf("WaitingPosition called with %q", id)
			}
			return 2, nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue/t3/position", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["position"] != 2 {
		t.Fatalf("position = %d, want 2", res["position"])
	}
}

func TestClearAllEndpoint(t *testing.T) {
	handler := NewHandler(fakeQueue{
		clearFn: func(ctx context.Context) (queue.ClearResult, error) {
			return queue.ClearResult{TicketsDeleted: 5, CounterReset: true}, nil
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodDelete, "/api/queue/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["queues_deleted"] != float64(5) || res["counter_reset"] != true {
		t.Fatalf("response = %v", res)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	handler := NewHandler(fakeQueue{
		listFn: func(ctx context.Context, status string) ([]models.Ticket, error) {
			return nil, fmt.Errorf("%w: connection refused", store.ErrStore)
		},
	}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Error.Code != "internal_error" {
		t.Fatalf("code = %q", res.Error.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewHandler(fakeQueue{}).Routes()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/queue"},
		{http.MethodPost, "/api/queue/clear"},
		{http.MethodPut, "/api/queue/t1"},
		{http.MethodPost, "/api/queue/t1/position"},
		{http.MethodPost, "/healthz"},
	}

	for _, tt := range cases {
		rec := doRequest(t, handler, tt.method, tt.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func TestUnknownSubpathIsNotFound(t *testing.T) {
	handler := NewHandler(fakeQueue{}).Routes()

	rec := doRequest(t, handler, http.MethodGet, "/api/queue/t1/history", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	handler := NewRateLimiter(RateLimitConfig{PerMinute: 60, Burst: 2}).Middleware(
		NewHandler(fakeQueue{}).Routes(),
	)

	var last int
	for i := 0; i < 3; i++ {
		rec := doRequest(t, handler, http.MethodGet, "/healthz", nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last)
	}
}
