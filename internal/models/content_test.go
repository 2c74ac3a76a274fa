package models

import (
	"testing"
)

func TestUpsertVote(t *testing.T) {
	t.Run("appends a new voter", func(t *testing.T) {
		votes := UpsertVote(nil, 1, 1)
		votes = UpsertVote(votes, 2, -1)

		if len(votes) != 2 {
			t.Fatalf("expected 2 votes, got %d", len(votes))
		}
		if votes[0].UserID != 1 || votes[0].Value != 1 {
			t.Errorf("unexpected first vote: %+v", votes[0])
		}
		if votes[1].UserID != 2 || votes[1].Value != -1 {
			t.Errorf("unexpected second vote: %+v", votes[1])
		}
	})

	t.Run("overwrites an existing voter in place", func(t *testing.T) {
		votes := VoteList{{UserID: 1, Value: 1}, {UserID: 2, Value: 1}}
		votes = UpsertVote(votes, 1, -1)

		if len(votes) != 2 {
			t.Fatalf("expected 2 votes after revote, got %d", len(votes))
		}
		if votes[0].UserID != 1 || votes[0].Value != -1 {
			t.Errorf("revote should overwrite in place, got %+v", votes[0])
		}
		if votes[1].UserID != 2 || votes[1].Value != 1 {
			t.Errorf("untouched entry changed: %+v", votes[1])
		}
	})

	t.Run("same value is idempotent", func(t *testing.T) {
		votes := VoteList{{UserID: 7, Value: 1}}
		votes = UpsertVote(votes, 7, 1)

		if len(votes) != 1 || votes[0].Value != 1 {
			t.Errorf("expected single unchanged vote, got %+v", votes)
		}
	})
}

func TestTallyVotes(t *testing.T) {
	tests := []struct {
		name      string
		votes     VoteList
		upvotes   int
		downvotes int
	}{
		{name: "empty", votes: nil},
		{
			name:    "all up",
			votes:   VoteList{{UserID: 1, Value: 1}, {UserID: 2, Value: 1}},
			upvotes: 2,
		},
		{
			name:      "mixed",
			votes:     VoteList{{UserID: 1, Value: 1}, {UserID: 2, Value: -1}, {UserID: 3, Value: -1}},
			upvotes:   1,
			downvotes: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := TallyVotes(tt.votes)
			if up != tt.upvotes || down != tt.downvotes {
				t.Errorf("TallyVotes() = (%d, %d), want (%d, %d)", up, down, tt.upvotes, tt.downvotes)
			}
		})
	}
}

func TestUserPassword(t *testing.T) {
	user := &User{}
	if err := user.SetPassword("sapeF2025"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if user.PasswordHash == "sapeF2025" {
		t.Fatal("password stored in plaintext")
	}

	if !user.ComparePassword("sapeF2025") {
		t.Error("correct password rejected")
	}
	if user.ComparePassword("wrong") {
		t.Error("wrong password accepted")
	}
}
