package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groupcart-dev/groupcart/db"
	"github.com/groupcart-dev/groupcart/internal/models"
	"github.com/groupcart-dev/groupcart/internal/notifier"
	"github.com/groupcart-dev/groupcart/internal/utils"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	GroupID uint               `json:"group_id" binding:"required"`
	Type    string             `json:"type" binding:"required,oneof=pickup delivery"`
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid processing shipped completed cancelled"`
}

// CreateOrder turns a fully paid group into an order. The group is marked
// completed, then the participant and seller notifications fire detached so
// they can never fail the checkout.
func CreateOrder(n *notifier.Notifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req CreateOrderRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var group models.Group

		if err := db.DB.First(&group, req.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
				return
			}
			log.Printf("Failed to fetch group %d: %v", req.GroupID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if group.OwnerID != userID {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner can place the group order"})
			return
		}

		if group.Status != models.GroupStatusOpen {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Group order has already been placed"})
			return
		}

		var items []models.OrderItem
		var total float64

		for _, item := range req.Items {
			var product models.Product

			if err := db.DB.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "Product not found"})
					return
				}
				log.Printf("Failed to fetch product %d: %v", item.ProductID, err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}

			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
			total += product.Price * float64(item.Quantity)
		}

		groupID := group.ID
		order := models.Order{
			UserID:  userID,
			GroupID: &groupID,
			Type:    req.Type,
			Status:  models.OrderStatusPaid,
			Total:   total,
			Items:   items,
		}

		if err := db.DB.Create(&order).Error; err != nil {
			log.Printf("Failed to create order: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if err := db.DB.Model(&group).Update("status", models.GroupStatusCompleted).Error; err != nil {
			log.Printf("Failed to complete group %d: %v", group.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		go n.GroupOrderCreated(group.ID, order.ID)
		go n.NewOrderForSellers(order.ID)

		ctx.JSON(http.StatusCreated, gin.H{
			"order": gin.H{
				"id":     order.ID,
				"type":   order.Type,
				"status": order.Status,
				"total":  order.Total,
			},
		})
	}
}

// canTransitionOrder reports whether the user is the order's owner or sells
// one of its items.
func canTransitionOrder(order models.Order, userID uint) bool {
	if order.UserID == userID {
		return true
	}

	for _, item := range order.Items {
		var product models.Product

		if err := db.DB.First(&product, item.ProductID).Error; err != nil {
			continue
		}
		if product.SellerID == userID {
			return true
		}
	}
	return false
}

// UpdateOrderStatus transitions an order and notifies the owner; a transition
// to completed additionally triggers the pickup or delivery completion
// fan-out depending on the order type. Only the order owner or a seller with
// items in the order may transition it.
func UpdateOrderStatus(n *notifier.Notifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orderID, err := utils.GetOrderID(ctx)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req UpdateOrderStatusRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order

		if err := db.DB.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			log.Printf("Failed to fetch order %d: %v", orderID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !canTransitionOrder(order, userID) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to update this order"})
			return
		}

		if err := db.DB.Model(&order).Update("status", req.Status).Error; err != nil {
			log.Printf("Failed to update order %d: %v", orderID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		go n.OrderStatusChanged(orderID, req.Status)

		if req.Status == models.OrderStatusCompleted {
			switch order.Type {
			case models.OrderTypePickup:
				go n.PickupOrderReady(orderID)
			case models.OrderTypeDelivery:
				go n.DeliveryOrderCompleted(orderID)
			}
		}

		ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
	}
}
