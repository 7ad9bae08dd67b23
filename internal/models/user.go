package models

// User describes a platform member who asks, answers and votes.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Questions     []Question     `gorm:"foreignKey:AuthorID" json:"-"`
	Answers       []Answer       `gorm:"foreignKey:AuthorID" json:"-"`
	Votes         []Vote         `gorm:"foreignKey:VoterID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}
