package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaxFilesPerPost caps the attachments accepted on a question or answer.
const MaxFilesPerPost = 5

// Vote is one entry in a target's vote list. A target holds at most one
// entry per user; casting again overwrites the value in place.
type Vote struct {
	UserID uint `json:"user"`
	Value  int  `json:"value"` // +1 or -1
}

// Report is one entry in a target's report list. Reports are never
// deduplicated.
type Report struct {
	UserID uint   `json:"user"`
	Reason string `json:"reason"`
}

// VoteList is the JSONB-backed vote sequence shared by questions and answers.
type VoteList = datatypes.JSONSlice[Vote]

// ReportList is the JSONB-backed report sequence shared by questions and answers.
type ReportList = datatypes.JSONSlice[Report]

// Upsert records value for userID, overwriting an existing entry in place.
// Returns the updated list; ordering of untouched entries is preserved.
func UpsertVote(votes VoteList, userID uint, value int) VoteList {
	for i := range votes {
		if votes[i].UserID == userID {
			votes[i].Value = value
			return votes
		}
	}
	return append(votes, Vote{UserID: userID, Value: value})
}

// TallyVotes computes the separate up/down counts exposed to clients.
func TallyVotes(votes VoteList) (upvotes, downvotes int) {
	for _, v := range votes {
		if v.Value > 0 {
			upvotes++
		} else if v.Value < 0 {
			downvotes++
		}
	}
	return upvotes, downvotes
}

type Question struct {
	ID          uint                         `json:"id" gorm:"primaryKey"`
	Title       string                       `json:"title" gorm:"not null;size:300"`
	Description string                       `json:"description" gorm:"type:text;not null"`
	Class       string                       `json:"class" gorm:"not null;size:50;index"`
	Subject     datatypes.JSONSlice[string]  `json:"subject" gorm:"type:jsonb"` // tags
	Files       datatypes.JSONSlice[string]  `json:"files" gorm:"type:jsonb"`   // object storage URLs
	UserID      uint                         `json:"user" gorm:"not null;index"`
	Votes       VoteList                     `json:"votes" gorm:"type:jsonb"`
	Reports     ReportList                   `json:"reports" gorm:"type:jsonb"`
	CreatedAt   time.Time                    `json:"created_at"`

	// Relations
	Author  User     `json:"author" gorm:"foreignKey:UserID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	QuestionID uint                        `json:"question" gorm:"not null;index"`
	UserID     uint                        `json:"user" gorm:"not null;index"`
	Content    string                      `json:"content" gorm:"type:text;not null"`
	Files      datatypes.JSONSlice[string] `json:"files" gorm:"type:jsonb"`
	Votes      VoteList                    `json:"votes" gorm:"type:jsonb"`
	Reports    ReportList                  `json:"reports" gorm:"type:jsonb"`
	IsVerified bool                        `json:"is_verified" gorm:"default:false"`
	CreatedAt  time.Time                   `json:"created_at"`

	// Relations
	Author User `json:"author" gorm:"foreignKey:UserID"`
}

func (Answer) TableName() string {
	return "answers"
}
