package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/groupcart-dev/groupcart/internal/models"
	"github.com/groupcart-dev/groupcart/internal/types"
	"github.com/groupcart-dev/groupcart/internal/ws"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier turns business events into persisted notifications and pushes them
// to any client currently connected for the recipient. It is stateless per
// call; one instance is constructed at startup and shared by all callers.
//
// Every scenario method follows the same shape: resolve the referenced
// entities, bail out with a log line if any is missing, build the template,
// then persist and deliver. Failures never reach the domain caller; the one
// exception is RemindIncompleteGroups, whose error is the batch binary's exit
// signal.
type Notifier struct {
	db  *gorm.DB
	hub *ws.Hub
}

func New(db *gorm.DB, hub *ws.Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// NotificationEvent is the frame pushed to live clients. It carries the full
// persisted record so live delivery and later history polls see the same
// shape.
type NotificationEvent struct {
	Type         string                   `json:"type"`
	UserID       uint                     `json:"user_id"`
	Notification types.NotificationRecord `json:"notification"`
}

type template struct {
	Type     string
	Title    string
	Message  string
	Priority string
	Payload  map[string]interface{}
}

// createNotification persists the record, then broadcasts it with the
// server-assigned id and creation time. Persistence errors are returned
// uncaught; delivery errors are handled inside the hub (eviction) and never
// surface here.
func (n *Notifier) createNotification(userID uint, tmpl template) error {
	payload, err := json.Marshal(tmpl.Payload)
	if err != nil {
		return err
	}

	record := models.Notification{
		UserID:   userID,
		Type:     tmpl.Type,
		Title:    tmpl.Title,
		Message:  tmpl.Message,
		Priority: tmpl.Priority,
		Payload:  datatypes.JSON(payload),
	}

	if err := n.db.Create(&record).Error; err != nil {
		return err
	}

	n.hub.BroadcastToUser(userID, NotificationEvent{
		Type:         "new_notification",
		UserID:       userID,
		Notification: types.ToNotificationRecord(record),
	})

	return nil
}

// logResolve reports a failed entity lookup. Missing entities are an expected
// race (the entity may have been deleted since the event fired), so they only
// get a skip line.
func logResolve(entity string, id uint, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("notifier: %s %d not found, skipping notification", entity, id)
		return
	}
	log.Printf("notifier: failed to load %s %d: %v", entity, id, err)
}

// JoinRequested notifies a group's owner that userID asked to join.
func (n *Notifier) JoinRequested(groupID, userID uint) {
	var group models.Group
	if err := n.db.First(&group, groupID).Error; err != nil {
		logResolve("group", groupID, err)
		return
	}

	var requester models.User
	if err := n.db.First(&requester, userID).Error; err != nil {
		logResolve("user", userID, err)
		return
	}

	tmpl := template{
		Type:     models.NotificationGroupJoinRequest,
		Title:    "New join request",
		Message:  fmt.Sprintf("%s wants to join your group '%s'", requester.Name, group.Name),
		Priority: models.PriorityNormal,
		Payload: map[string]interface{}{
			"group_id": group.ID,
			"user_id":  requester.ID,
		},
	}

	if err := n.createNotification(group.OwnerID, tmpl); err != nil {
		log.Printf("notifier: join request notification for group %d failed: %v", groupID, err)
	}
}

// RequestAccepted notifies userID that the owner accepted their join request.
func (n *Notifier) RequestAccepted(groupID, userID uint) {
	var group models.Group
	if err := n.db.First(&group, groupID).Error; err != nil {
		logResolve("group", groupID, err)
		return
	}

	tmpl := template{
		Type:     models.NotificationGroupRequestAccepted,
		Title:    "Join request accepted",
		Message:  fmt.Sprintf("Your request to join '%s' has been accepted", group.Name),
		Priority: models.PriorityNormal,
		Payload: map[string]interface{}{
			"group_id": group.ID,
		},
	}

	if err := n.createNotification(userID, tmpl); err != nil {
		log.Printf("notifier: request accepted notification for group %d failed: %v", groupID, err)
	}
}

// GroupOrderCreated notifies every approved participant of the group that the
// completed group payment produced an order.
func (n *Notifier) GroupOrderCreated(groupID, orderID uint) {
	var group models.Group
	if err := n.db.First(&group, groupID).Error; err != nil {
		logResolve("group", groupID, err)
		return
	}

	var order models.Order
	if err := n.db.First(&order, orderID).Error; err != nil {
		logResolve("order", orderID, err)
		return
	}

	var members []models.GroupMember
	if err := n.db.Where("group_id = ? AND status = ?", groupID, models.MemberStatusApproved).Find(&members).Error; err != nil {
		log.Printf("notifier: failed to load members of group %d: %v", groupID, err)
		return
	}

	for _, member := range members {
		tmpl := template{
			Type:     models.NotificationOrderCreated,
			Title:    "Group purchase complete",
			Message:  fmt.Sprintf("Group '%s' completed its purchase. Order #%d for $%.2f has been created", group.Name, order.ID, order.Total),
			Priority: models.PriorityHigh,
			Payload: map[string]interface{}{
				"group_id": group.ID,
				"order_id": order.ID,
				"total":    order.Total,
			},
		}

		if err := n.createNotification(member.UserID, tmpl); err != nil {
			log.Printf("notifier: order created notification for user %d failed: %v", member.UserID, err)
		}
	}
}

// OrderStatusChanged notifies the order's owner about a status transition.
func (n *Notifier) OrderStatusChanged(orderID uint, status string) {
	var order models.Order
	if err := n.db.First(&order, orderID).Error; err != nil {
		logResolve("order", orderID, err)
		return
	}

	tmpl := template{
		Type:     models.NotificationOrderStatusChange,
		Title:    "Order status updated",
		Message:  fmt.Sprintf("Your order #%d is now %s", order.ID, status),
		Priority: models.PriorityNormal,
		Payload: map[string]interface{}{
			"order_id": order.ID,
			"status":   status,
		},
	}

	if err := n.createNotification(order.UserID, tmpl); err != nil {
		log.Printf("notifier: status change notification for order %d failed: %v", orderID, err)
	}
}

// NewOrderForSellers notifies each distinct seller whose product appears in
// the order's line items. Each seller's message lists only their own product
// names. Products are resolved one per line item.
func (n *Notifier) NewOrderForSellers(orderID uint) {
	var order models.Order
	if err := n.db.Preload("Items").First(&order, orderID).Error; err != nil {
		logResolve("order", orderID, err)
		return
	}

	sellerProducts := make(map[uint][]string)
	for _, item := range order.Items {
		var product models.Product
		if err := n.db.First(&product, item.ProductID).Error; err != nil {
			logResolve("product", item.ProductID, err)
			continue
		}
		sellerProducts[product.SellerID] = append(sellerProducts[product.SellerID], product.Name)
	}

	for sellerID, names := range sellerProducts {
		tmpl := template{
			Type:     models.NotificationNewOrder,
			Title:    "New order received",
			Message:  fmt.Sprintf("Order #%d includes your products: %s", order.ID, strings.Join(names, ", ")),
			Priority: models.PriorityHigh,
			Payload: map[string]interface{}{
				"order_id": order.ID,
				"products": names,
			},
		}

		if err := n.createNotification(sellerID, tmpl); err != nil {
			log.Printf("notifier: new order notification for seller %d failed: %v", sellerID, err)
		}
	}
}

// RemindIncompleteGroups sends every owner of at least one public open group
// with fewer than the minimum approved participants a single notification
// listing all of their incomplete groups. Invoked by the reminder binary;
// unlike the event scenarios, a failure here is returned so the external
// scheduler sees a non-zero exit.
func (n *Notifier) RemindIncompleteGroups() error {
	var groups []models.Group
	err := n.db.
		Where("is_public = ? AND status = ?", true, models.GroupStatusOpen).
		Preload("Members", "status = ?", models.MemberStatusApproved).
		Find(&groups).Error
	if err != nil {
		return err
	}

	incomplete := make(map[uint][]models.Group)
	for _, group := range groups {
		if len(group.Members) < models.MinGroupSize {
			incomplete[group.OwnerID] = append(incomplete[group.OwnerID], group)
		}
	}

	for ownerID, owned := range incomplete {
		names := make([]string, 0, len(owned))
		ids := make([]uint, 0, len(owned))
		for _, group := range owned {
			names = append(names, group.Name)
			ids = append(ids, group.ID)
		}

		tmpl := template{
			Type:     models.NotificationGroupIncompleteReminder,
			Title:    "Your groups need more members",
			Message:  fmt.Sprintf("These groups still need participants: %s", strings.Join(names, ", ")),
			Priority: models.PriorityLow,
			Payload: map[string]interface{}{
				"group_ids": ids,
			},
		}

		if err := n.createNotification(ownerID, tmpl); err != nil {
			return err
		}
	}

	return nil
}

// PickupOrderReady notifies every member of the order's group, owner
// included, that the pickup order is ready.
func (n *Notifier) PickupOrderReady(orderID uint) {
	var order models.Order
	if err := n.db.First(&order, orderID).Error; err != nil {
		logResolve("order", orderID, err)
		return
	}

	if order.GroupID == nil {
		log.Printf("notifier: order %d has no group, skipping pickup notification", orderID)
		return
	}

	var group models.Group
	if err := n.db.First(&group, *order.GroupID).Error; err != nil {
		logResolve("group", *order.GroupID, err)
		return
	}

	var members []models.GroupMember
	if err := n.db.Where("group_id = ? AND status = ?", group.ID, models.MemberStatusApproved).Find(&members).Error; err != nil {
		log.Printf("notifier: failed to load members of group %d: %v", group.ID, err)
		return
	}

	recipients := []uint{group.OwnerID}
	seen := map[uint]bool{group.OwnerID: true}
	for _, member := range members {
		if !seen[member.UserID] {
			recipients = append(recipients, member.UserID)
			seen[member.UserID] = true
		}
	}

	for _, userID := range recipients {
		tmpl := template{
			Type:     models.NotificationPickupOrderReady,
			Title:    "Pickup order ready",
			Message:  fmt.Sprintf("Order #%d for group '%s' is ready for pickup", order.ID, group.Name),
			Priority: models.PriorityHigh,
			Payload: map[string]interface{}{
				"group_id": group.ID,
				"order_id": order.ID,
			},
		}

		if err := n.createNotification(userID, tmpl); err != nil {
			log.Printf("notifier: pickup notification for user %d failed: %v", userID, err)
		}
	}
}

// DeliveryOrderCompleted notifies the order's recipient, and separately the
// group owner when the order belongs to a group owned by someone else.
func (n *Notifier) DeliveryOrderCompleted(orderID uint) {
	var order models.Order
	if err := n.db.First(&order, orderID).Error; err != nil {
		logResolve("order", orderID, err)
		return
	}

	tmpl := template{
		Type:     models.NotificationDeliveryOrderCompleted,
		Title:    "Order delivered",
		Message:  fmt.Sprintf("Your order #%d has been delivered", order.ID),
		Priority: models.PriorityNormal,
		Payload: map[string]interface{}{
			"order_id": order.ID,
		},
	}

	if err := n.createNotification(order.UserID, tmpl); err != nil {
		log.Printf("notifier: delivery notification for order %d failed: %v", orderID, err)
	}

	if order.GroupID == nil {
		return
	}

	var group models.Group
	if err := n.db.First(&group, *order.GroupID).Error; err != nil {
		logResolve("group", *order.GroupID, err)
		return
	}

	if group.OwnerID == order.UserID {
		return
	}

	ownerTmpl := template{
		Type:     models.NotificationDeliveryOrderCompleted,
		Title:    "Group order delivered",
		Message:  fmt.Sprintf("Order #%d from your group '%s' has been delivered", order.ID, group.Name),
		Priority: models.PriorityNormal,
		Payload: map[string]interface{}{
			"group_id": group.ID,
			"order_id": order.ID,
		},
	}

	if err := n.createNotification(group.OwnerID, ownerTmpl); err != nil {
		log.Printf("notifier: delivery notification for group owner %d failed: %v", group.OwnerID, err)
	}
}
