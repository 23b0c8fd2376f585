package models

import "time"

// ConversationSession stores the serialized engine state of one chat.
type ConversationSession struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Data      string    `gorm:"type:text;not null" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ConversationSession model
func (ConversationSession) TableName() string {
	return "conversation_sessions"
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Canteen{},
		&DeliveryPlace{},
		&Customer{},
		&CustomerPermission{},
		&Menu{},
		&MenuPosition{},
		&Order{},
		&OrderDetail{},
		&ConversationSession{},
	}
}
