// Package audit emits a JSON line for every ledger mutation. The folio is
// append-only; the audit stream is how corrections stay traceable.
package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	FolioID   string    `json:"folio_id"`
	EntryID   string    `json:"entry_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Balance   int64     `json:"balance"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogPost(eventType, folioID, entryID string, amount, balance int64) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		FolioID:   folioID,
		EntryID:   entryID,
		Amount:    amount,
		Balance:   balance,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogClose(folioID string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "FOLIO_CLOSED",
		FolioID:   folioID,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogError(eventType, folioID, entryID string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		FolioID:   folioID,
		EntryID:   entryID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
