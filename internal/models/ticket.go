package models

import "time"

// Ticket is one customer's queue booking. JSON field names are the wire
// shape the customer, admin, and monitor views already consume.
type Ticket struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Pax         int       `json:"pax"`
	Status      string    `json:"status"`
	QueueNumber string    `json:"queueNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	StatusWaiting   = "waiting"
	StatusCalled    = "called"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

func KnownStatus(status string) bool {
	switch status {
	case StatusWaiting, StatusCalled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
