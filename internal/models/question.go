package models

import "gorm.io/datatypes"

// Question is a post seeking answers. IsAnswered mirrors the presence of an
// accepted answer and is mutated only by the acceptance workflow.
type Question struct {
	BaseModel

	Title    string `gorm:"type:varchar(255);not null;index" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`

	IsAnswered bool `gorm:"default:false" json:"is_answered"`

	// Images holds an optional JSON array of attached image URLs.
	Images datatypes.JSON `json:"images,omitempty"`

	Author  *User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
	Votes   []Vote   `gorm:"foreignKey:QuestionID" json:"-"`
	Tags    []Tag    `gorm:"many2many:question_tags;" json:"tags,omitempty"`
}
