package types

import (
	"encoding/json"
	"time"

	"github.com/groupcart-dev/groupcart/internal/models"
)

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NotificationRecord is the wire shape of one persisted notification. The
// realtime push and the history endpoints both use it, so a live client and a
// later poll see identical records.
type NotificationRecord struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Priority  string          `json:"priority"`
	Payload   json.RawMessage `json:"payload"`
	IsRead    bool            `json:"is_read"`
	CreatedAt string          `json:"created_at"`
}

func ToNotificationRecord(n models.Notification) NotificationRecord {
	return NotificationRecord{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		Payload:   json.RawMessage(n.Payload),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func ToNotificationRecords(notifications []models.Notification) []NotificationRecord {
	records := make([]NotificationRecord, 0, len(notifications))
	for _, n := range notifications {
		records = append(records, ToNotificationRecord(n))
	}
	return records
}
