package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types, one per business-event scenario.
const (
	NotificationGroupJoinRequest        = "group_join_request"
	NotificationGroupRequestAccepted    = "group_request_accepted"
	NotificationOrderCreated            = "order_created"
	NotificationOrderStatusChange       = "order_status_change"
	NotificationNewOrder                = "new_order"
	NotificationGroupIncompleteReminder = "group_incomplete_reminder"
	NotificationPickupOrderReady        = "pickup_order_ready"
	NotificationDeliveryOrderCompleted  = "delivery_order_completed"
)

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification is the durable record of one message to one recipient. It is
// append-only from the notifier's point of view: created once per triggering
// event, mutated afterwards only by the read-state endpoints.
type Notification struct {
	gorm.Model

	UserID   uint           `gorm:"not null;index"`
	Type     string         `gorm:"not null;index"`
	Title    string         `gorm:"not null"`
	Message  string         `gorm:"not null"`
	Priority string         `gorm:"not null;default:normal"` // "low", "normal", "high", "urgent"
	Payload  datatypes.JSON `gorm:"type:jsonb"`
	IsRead   bool           `gorm:"default:false;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
