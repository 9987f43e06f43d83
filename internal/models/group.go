package models

import "gorm.io/gorm"

const (
	GroupStatusOpen      = "open"
	GroupStatusCompleted = "completed"

	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
	MemberStatusRejected = "rejected"

	// MinGroupSize is the approved-participant count below which a public
	// group counts as incomplete for the reminder scan.
	MinGroupSize = 5
)

type Group struct {
	gorm.Model

	OwnerID     uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	IsPublic    bool   `gorm:"default:false"`
	Status      string `gorm:"not null;default:open"` // "open", "completed"

	// Relationships
	Owner   User          `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Orders  []Order       `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

type GroupMember struct {
	gorm.Model

	GroupID uint   `gorm:"not null;uniqueIndex:idx_group_member"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_group_member"`
	Status  string `gorm:"not null;default:pending"` // "pending", "approved", "rejected"

	// Relationships
	Group Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
