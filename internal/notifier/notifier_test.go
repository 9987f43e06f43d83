package notifier

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/groupcart-dev/groupcart/internal/models"
	"github.com/groupcart-dev/groupcart/internal/ws"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	// A second pooled connection would see a different in-memory database.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return gdb
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func createGroup(t *testing.T, db *gorm.DB, ownerID uint, name string, public bool) models.Group {
	t.Helper()

	group := models.Group{
		OwnerID:  ownerID,
		Name:     name,
		IsPublic: public,
		Status:   models.GroupStatusOpen,
	}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to create group %s: %v", name, err)
	}
	return group
}

func addMember(t *testing.T, db *gorm.DB, groupID, userID uint, status string) {
	t.Helper()

	member := models.GroupMember{GroupID: groupID, UserID: userID, Status: status}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

func createProduct(t *testing.T, db *gorm.DB, sellerID uint, name string, price float64) models.Product {
	t.Helper()

	product := models.Product{SellerID: sellerID, Name: name, Price: price}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product %s: %v", name, err)
	}
	return product
}

func allNotifications(t *testing.T, db *gorm.DB) []models.Notification {
	t.Helper()

	var notifications []models.Notification
	if err := db.Find(&notifications).Error; err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	return notifications
}

func notificationsFor(t *testing.T, db *gorm.DB, userID uint) []models.Notification {
	t.Helper()

	var notifications []models.Notification
	if err := db.Where("user_id = ?", userID).Find(&notifications).Error; err != nil {
		t.Fatalf("failed to list notifications for user %d: %v", userID, err)
	}
	return notifications
}

func TestJoinRequestedNotifiesGroupOwner(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	requester := createUser(t, db, "Rami")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)

	n.JoinRequested(group.ID, requester.ID)

	got := notificationsFor(t, db, owner.ID)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification for the owner, got %d", len(got))
	}

	record := got[0]
	if record.Type != models.NotificationGroupJoinRequest {
		t.Errorf("unexpected type %q", record.Type)
	}
	if record.Priority != models.PriorityNormal {
		t.Errorf("unexpected priority %q", record.Priority)
	}
	if record.IsRead {
		t.Error("new notification should be unread")
	}
	if !strings.Contains(record.Message, "Rami") || !strings.Contains(record.Message, "Bulk Coffee") {
		t.Errorf("message is missing names: %q", record.Message)
	}
}

func TestJoinRequestedMissingGroupCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	requester := createUser(t, db, "Rami")

	n.JoinRequested(999, requester.ID)

	if got := allNotifications(t, db); len(got) != 0 {
		t.Fatalf("expected no notifications, got %d", len(got))
	}
}

func TestRequestAcceptedNotifiesRequester(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	requester := createUser(t, db, "Rami")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)

	n.RequestAccepted(group.ID, requester.ID)

	got := notificationsFor(t, db, requester.ID)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification for the requester, got %d", len(got))
	}
	if got[0].Type != models.NotificationGroupRequestAccepted {
		t.Errorf("unexpected type %q", got[0].Type)
	}
	if !strings.Contains(got[0].Message, "Bulk Coffee") {
		t.Errorf("message is missing the group name: %q", got[0].Message)
	}
}

func TestGroupOrderCreatedNotifiesApprovedParticipantsOnly(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	approvedA := createUser(t, db, "Ana")
	approvedB := createUser(t, db, "Ben")
	pending := createUser(t, db, "Pat")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)
	addMember(t, db, group.ID, approvedA.ID, models.MemberStatusApproved)
	addMember(t, db, group.ID, approvedB.ID, models.MemberStatusApproved)
	addMember(t, db, group.ID, pending.ID, models.MemberStatusPending)

	groupID := group.ID
	order := models.Order{UserID: owner.ID, GroupID: &groupID, Type: models.OrderTypePickup, Status: models.OrderStatusPaid, Total: 120.50}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.GroupOrderCreated(group.ID, order.ID)

	if got := allNotifications(t, db); len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got := notificationsFor(t, db, pending.ID); len(got) != 0 {
		t.Errorf("pending member should not be notified")
	}
	for _, userID := range []uint{approvedA.ID, approvedB.ID} {
		got := notificationsFor(t, db, userID)
		if len(got) != 1 {
			t.Fatalf("expected 1 notification for user %d, got %d", userID, len(got))
		}
		if got[0].Type != models.NotificationOrderCreated {
			t.Errorf("unexpected type %q", got[0].Type)
		}
		if !strings.Contains(got[0].Message, "120.50") {
			t.Errorf("message is missing the amount: %q", got[0].Message)
		}
	}
}

func TestOrderStatusChangedPersistsWithoutLiveClients(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	user := createUser(t, db, "Ana")
	order := models.Order{UserID: user.ID, Type: models.OrderTypeDelivery, Status: models.OrderStatusPaid, Total: 10}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.OrderStatusChanged(order.ID, models.OrderStatusShipped)

	got := notificationsFor(t, db, user.ID)
	if len(got) != 1 {
		t.Fatalf("expected the record to be created with zero channels, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "shipped") {
		t.Errorf("message is missing the status: %q", got[0].Message)
	}
}

func TestNewOrderForSellersSplitsBySeller(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	buyer := createUser(t, db, "Ana")
	sellerA := createUser(t, db, "Sam")
	sellerB := createUser(t, db, "Tia")
	honey := createProduct(t, db, sellerA.ID, "Honey", 8)
	jam := createProduct(t, db, sellerA.ID, "Jam", 5)
	bread := createProduct(t, db, sellerB.ID, "Bread", 3)

	order := models.Order{
		UserID: buyer.ID,
		Type:   models.OrderTypeDelivery,
		Status: models.OrderStatusPaid,
		Total:  16,
		Items: []models.OrderItem{
			{ProductID: honey.ID, Quantity: 1, Price: honey.Price},
			{ProductID: jam.ID, Quantity: 1, Price: jam.Price},
			{ProductID: bread.ID, Quantity: 1, Price: bread.Price},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.NewOrderForSellers(order.ID)

	if got := allNotifications(t, db); len(got) != 2 {
		t.Fatalf("expected exactly 2 notifications, got %d", len(got))
	}

	gotA := notificationsFor(t, db, sellerA.ID)
	if len(gotA) != 1 {
		t.Fatalf("expected 1 notification for seller A, got %d", len(gotA))
	}
	if !strings.Contains(gotA[0].Message, "Honey") || !strings.Contains(gotA[0].Message, "Jam") {
		t.Errorf("seller A message is missing own products: %q", gotA[0].Message)
	}
	if strings.Contains(gotA[0].Message, "Bread") {
		t.Errorf("seller A message lists another seller's product: %q", gotA[0].Message)
	}

	gotB := notificationsFor(t, db, sellerB.ID)
	if len(gotB) != 1 {
		t.Fatalf("expected 1 notification for seller B, got %d", len(gotB))
	}
	if !strings.Contains(gotB[0].Message, "Bread") {
		t.Errorf("seller B message is missing own product: %q", gotB[0].Message)
	}
	if strings.Contains(gotB[0].Message, "Honey") {
		t.Errorf("seller B message lists another seller's product: %q", gotB[0].Message)
	}
}

func TestRemindIncompleteGroupsAggregatesPerOwner(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	ownerA := createUser(t, db, "Olga")
	ownerB := createUser(t, db, "Igor")

	smallA1 := createGroup(t, db, ownerA.ID, "Coffee Run", true)
	smallA2 := createGroup(t, db, ownerA.ID, "Tea Club", true)
	smallB := createGroup(t, db, ownerB.ID, "Rice Bulk", true)
	createGroup(t, db, ownerA.ID, "Private Snacks", false) // private, excluded

	// A full group must not appear in the reminder.
	full := createGroup(t, db, ownerA.ID, "Full House", true)
	for i := 0; i < models.MinGroupSize; i++ {
		member := createUser(t, db, "Member"+string(rune('A'+i)))
		addMember(t, db, full.ID, member.ID, models.MemberStatusApproved)
	}

	if err := n.RemindIncompleteGroups(); err != nil {
		t.Fatalf("reminder run failed: %v", err)
	}

	if got := allNotifications(t, db); len(got) != 2 {
		t.Fatalf("expected exactly 2 notifications (one per owner), got %d", len(got))
	}

	gotA := notificationsFor(t, db, ownerA.ID)
	if len(gotA) != 1 {
		t.Fatalf("expected 1 aggregated notification for owner A, got %d", len(gotA))
	}
	if !strings.Contains(gotA[0].Message, smallA1.Name) || !strings.Contains(gotA[0].Message, smallA2.Name) {
		t.Errorf("owner A message should enumerate both incomplete groups: %q", gotA[0].Message)
	}
	if strings.Contains(gotA[0].Message, "Full House") || strings.Contains(gotA[0].Message, "Private Snacks") {
		t.Errorf("owner A message lists an excluded group: %q", gotA[0].Message)
	}
	if gotA[0].Priority != models.PriorityLow {
		t.Errorf("unexpected priority %q", gotA[0].Priority)
	}

	gotB := notificationsFor(t, db, ownerB.ID)
	if len(gotB) != 1 {
		t.Fatalf("expected 1 notification for owner B, got %d", len(gotB))
	}
	if !strings.Contains(gotB[0].Message, smallB.Name) {
		t.Errorf("owner B message is missing the group name: %q", gotB[0].Message)
	}
}

func TestPickupOrderReadyNotifiesAllMembers(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)

	memberIDs := []uint{owner.ID}
	for _, name := range []string{"Ana", "Ben", "Cho"} {
		member := createUser(t, db, name)
		addMember(t, db, group.ID, member.ID, models.MemberStatusApproved)
		memberIDs = append(memberIDs, member.ID)
	}

	groupID := group.ID
	order := models.Order{UserID: owner.ID, GroupID: &groupID, Type: models.OrderTypePickup, Status: models.OrderStatusCompleted, Total: 50}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.PickupOrderReady(order.ID)

	if got := allNotifications(t, db); len(got) != 4 {
		t.Fatalf("expected 4 notifications (owner + 3 participants), got %d", len(got))
	}

	for _, userID := range memberIDs {
		got := notificationsFor(t, db, userID)
		if len(got) != 1 {
			t.Fatalf("expected 1 notification for user %d, got %d", userID, len(got))
		}
		if got[0].Type != models.NotificationPickupOrderReady {
			t.Errorf("unexpected type %q", got[0].Type)
		}
	}
}

func TestDeliveryOrderCompletedNotifiesRecipientAndOwner(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	recipient := createUser(t, db, "Ana")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)

	groupID := group.ID
	order := models.Order{UserID: recipient.ID, GroupID: &groupID, Type: models.OrderTypeDelivery, Status: models.OrderStatusCompleted, Total: 50}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.DeliveryOrderCompleted(order.ID)

	gotRecipient := notificationsFor(t, db, recipient.ID)
	gotOwner := notificationsFor(t, db, owner.ID)
	if len(gotRecipient) != 1 || len(gotOwner) != 1 {
		t.Fatalf("expected one notification each, got recipient=%d owner=%d", len(gotRecipient), len(gotOwner))
	}
	if gotRecipient[0].Title == gotOwner[0].Title {
		t.Errorf("recipient and owner should get role-specific titles, both got %q", gotOwner[0].Title)
	}
}

func TestDeliveryOrderCompletedOwnerIsRecipient(t *testing.T) {
	db := setupTestDB(t)
	n := New(db, ws.NewHub())

	owner := createUser(t, db, "Olga")
	group := createGroup(t, db, owner.ID, "Bulk Coffee", true)

	groupID := group.ID
	order := models.Order{UserID: owner.ID, GroupID: &groupID, Type: models.OrderTypeDelivery, Status: models.OrderStatusCompleted, Total: 50}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	n.DeliveryOrderCompleted(order.ID)

	if got := allNotifications(t, db); len(got) != 1 {
		t.Fatalf("expected a single notification when the owner is the recipient, got %d", len(got))
	}
}
