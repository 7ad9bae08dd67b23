package models

// Tag labels questions by topic.
type Tag struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Questions []Question `gorm:"many2many:question_tags;" json:"-"`
}
