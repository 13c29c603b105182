package models

import "time"

// User is a directory entry mapping a public username to a stable creator key.
type User struct {
	Key         string    `gorm:"column:user_key;primaryKey;size:191" json:"key"`
	Username    string    `gorm:"column:username;size:191;uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"column:display_name;size:255" json:"displayName"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the table name.
func (User) TableName() string {
	return "users"
}
