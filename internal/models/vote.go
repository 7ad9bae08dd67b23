package models

// VoteDirection enumerates the two vote directions.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Valid reports whether the direction is one of the known values.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote records a single user's vote on exactly one question or answer.
// The composite unique indexes make (voter, target) pairs unique at the
// storage layer; rows for the other target kind carry NULL and stay
// unconstrained by that index.
type Vote struct {
	BaseModel

	VoterID    string  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_voter_question;uniqueIndex:idx_votes_voter_answer" json:"voter_id"`
	QuestionID *string `gorm:"type:uuid;uniqueIndex:idx_votes_voter_question" json:"question_id,omitempty"`
	AnswerID   *string `gorm:"type:uuid;uniqueIndex:idx_votes_voter_answer" json:"answer_id,omitempty"`

	Direction VoteDirection `gorm:"type:varchar(8);not null" json:"direction"`

	Voter    *User     `gorm:"foreignKey:VoterID" json:"-"`
	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
	Answer   *Answer   `gorm:"foreignKey:AnswerID" json:"-"`
}
