package models

import (
	"time"
)

// GroupMember links a user to a group whose leaderboards they appear on.
type GroupMember struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	GroupID   string    `gorm:"not null;uniqueIndex:idx_group_members,priority:1" json:"groupId"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_group_members,priority:2;index" json:"userId"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GroupMember) TableName() string {
	return "group_members"
}
