package models

// Answer is a response to a question. IsAccepted is mutated only by the
// acceptance workflow; at most one answer per question carries it.
type Answer struct {
	BaseModel

	QuestionID string `gorm:"type:uuid;not null;index" json:"question_id"`
	AuthorID   string `gorm:"type:uuid;not null;index" json:"author_id"`
	Content    string `gorm:"type:text;not null" json:"content"`

	IsAccepted bool `gorm:"default:false" json:"is_accepted"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Votes    []Vote    `gorm:"foreignKey:AnswerID" json:"-"`
}
