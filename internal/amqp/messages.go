package amqp

import (
	"encoding/json"
	"time"
)

// Message actions. Delete needs its own action because the worker cannot
// fetch a row that no longer exists; the message itself carries everything.
const (
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// BillSyncMessage is the lightweight change-feed message. For sync actions
// it carries only the ID and version; the worker fetches the full bill from
// the database so the queue never holds stale payloads.
type BillSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBillSyncMessage(id, version int64) *BillSyncMessage {
	return &BillSyncMessage{
		ID:        id,
		Version:   version,
		Action:    ActionSync,
		Timestamp: time.Now(),
	}
}

func NewBillDeleteMessage(id int64) *BillSyncMessage {
	return &BillSyncMessage{
		ID:        id,
		Action:    ActionDelete,
		Timestamp: time.Now(),
	}
}

func (m *BillSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BillSyncMessageFromJSON(data []byte) (*BillSyncMessage, error) {
	var msg BillSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
