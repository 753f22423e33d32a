package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RecentWindow is how far back a question still counts as recently published.
const RecentWindow = 24 * time.Hour

// Question is a poll prompt. It is only visible once PubDate has passed.
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	QuestionText string    `gorm:"size:200;not null" json:"question_text"`
	PubDate      time.Time `gorm:"not null;index" json:"pub_date"`
	Choices      []Choice  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Choice is one answer option of a Question
type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	ChoiceText string `gorm:"size:200;not null" json:"choice_text"`
	Votes      int64  `gorm:"not null;default:0" json:"votes"`
}

// BeforeSave stores publication dates in UTC so they compare consistently.
func (q *Question) BeforeSave(tx *gorm.DB) error {
	q.PubDate = q.PubDate.UTC()
	return nil
}

// WasPublishedRecently reports whether the question was published within
// RecentWindow before now. Questions dated in the future never qualify.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	return q.PubDate.After(now.Add(-RecentWindow)) && !q.PubDate.After(now)
}

// IsPublished reports whether the question is visible at now.
func (q *Question) IsPublished(now time.Time) bool {
	return !q.PubDate.After(now)
}

// TotalVotes sums the votes of the loaded choices.
func (q *Question) TotalVotes() int64 {
	var total int64
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

// HasChoice reports whether choiceID is one of the loaded choices.
func (q *Question) HasChoice(choiceID uint) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

func (q Question) String() string {
	return fmt.Sprintf("%s (%s)", q.QuestionText, q.PubDate.Format(PubDateLayout))
}

func (c Choice) String() string {
	return "choice: " + c.ChoiceText
}

// PubDateLayout is used when a question is printed.
const PubDateLayout = "2006-01-02 15:04:05.999999-07:00"
