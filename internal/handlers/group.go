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

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type GroupSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `json:"owner_id"`
	Status      string `json:"status"`
	Members     int    `json:"approved_members"`
}

func CreateGroup(ctx *gin.Context) {
	var req CreateGroupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	group := models.Group{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Status:      models.GroupStatusOpen,
	}

	if err := db.DB.Create(&group).Error; err != nil {
		log.Printf("Failed to create group: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"group": GroupSummary{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		OwnerID:     group.OwnerID,
		Status:      group.Status,
	}})
}

func ListPublicGroups(ctx *gin.Context) {
	var groups []models.Group

	err := db.DB.
		Where("is_public = ? AND status = ?", true, models.GroupStatusOpen).
		Preload("Members", "status = ?", models.MemberStatusApproved).
		Find(&groups).Error

	if err != nil {
		log.Printf("Failed to list groups: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, GroupSummary{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			OwnerID:     group.OwnerID,
			Status:      group.Status,
			Members:     len(group.Members),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"groups": summaries})
}

// JoinGroup records a pending membership and notifies the owner. The
// notification runs detached: its outcome never affects the join itself.
func JoinGroup(n *notifier.Notifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		groupID, err := utils.GetGroupID(ctx)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var group models.Group

		if err := db.DB.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
				return
			}
			log.Printf("Failed to fetch group %d: %v", groupID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if group.OwnerID == userID {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "You already own this group"})
			return
		}

		var existing models.GroupMember

		err = db.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing).Error

		if err == nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "You have already requested to join this group"})
			return
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to check membership: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		member := models.GroupMember{
			GroupID: groupID,
			UserID:  userID,
			Status:  models.MemberStatusPending,
		}

		if err := db.DB.Create(&member).Error; err != nil {
			log.Printf("Failed to create membership: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		go n.JoinRequested(groupID, userID)

		ctx.JSON(http.StatusCreated, gin.H{"message": "Join request sent"})
	}
}

// ApproveMember lets the group owner accept a pending join request and
// notifies the requester.
func ApproveMember(n *notifier.Notifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		groupID, err := utils.GetGroupID(ctx)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		memberUserID, err := utils.GetUserID(ctx)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		currentUserID, err := utils.GetCurrentUserID(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var group models.Group

		if err := db.DB.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
				return
			}
			log.Printf("Failed to fetch group %d: %v", groupID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if group.OwnerID != currentUserID {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner can approve members"})
			return
		}

		var member models.GroupMember

		err = db.DB.Where("group_id = ? AND user_id = ?", groupID, memberUserID).First(&member).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Join request not found"})
				return
			}
			log.Printf("Failed to fetch membership: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if member.Status == models.MemberStatusApproved {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Member is already approved"})
			return
		}

		if err := db.DB.Model(&member).Update("status", models.MemberStatusApproved).Error; err != nil {
			log.Printf("Failed to approve member: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		go n.RequestAccepted(groupID, memberUserID)

		ctx.JSON(http.StatusOK, gin.H{"message": "Member approved"})
	}
}
