package store

import "restoq/queue-service/internal/models"

var transitionMap = map[string][]string{
	models.StatusWaiting: {models.StatusCalled, models.StatusCancelled},
	models.StatusCalled:  {models.StatusCompleted, models.StatusWaiting},
}

// ValidTransition reports whether a ticket may move from one status to
// another. Completed and cancelled are terminal: nothing leaves them.
func ValidTransition(from, to string) bool {
	allowed, ok := transitionMap[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

func TerminalStatus(status string) bool {
	_, ok := transitionMap[status]
	return !ok && models.KnownStatus(status)
}
