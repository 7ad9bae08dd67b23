package models

import "time"

// NotificationType enumerates the events that fan out to recipients.
type NotificationType string

const (
	NotificationAnswer  NotificationType = "answer"
	NotificationMention NotificationType = "mention"
	NotificationVote    NotificationType = "vote"
	NotificationAccept  NotificationType = "accept"
)

// Notification is an in-app message for a single recipient. The related_*
// columns are weak back-references without foreign key constraints: deleting
// the referenced question, answer or user leaves the notification intact and
// renderable with a generic label.
type Notification struct {
	BaseModel

	UserID  string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title   string           `gorm:"type:varchar(255);not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`

	RelatedQuestionID *string `gorm:"type:uuid" json:"related_question_id,omitempty"`
	RelatedAnswerID   *string `gorm:"type:uuid" json:"related_answer_id,omitempty"`
	RelatedUserID     *string `gorm:"type:uuid" json:"related_user_id,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	Recipient *User `gorm:"foreignKey:UserID" json:"-"`
}
