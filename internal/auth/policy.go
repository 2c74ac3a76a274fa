package auth

import (
	"fmt"

	"github.com/shikhoron/qna-service/internal/models"
)

// Pure access decisions. Each function takes the resolved actor and returns
// (allowed, reason); reason is only meaningful on denial. Handlers and
// services never consult role flags directly.

// CanPostQuestion: any authenticated identity except administrators.
func CanPostQuestion(actor AuthContext) (bool, string) {
	if !actor.Authenticated() {
		return false, "authentication required"
	}
	if actor.IsAdmin {
		return false, "admin cannot post questions"
	}
	return true, ""
}

// CanVote: any authenticated identity except administrators.
func CanVote(actor AuthContext) (bool, string) {
	if !actor.Authenticated() {
		return false, "authentication required"
	}
	if actor.IsAdmin {
		return false, "admin cannot vote"
	}
	return true, ""
}

// CanAnswer: admin and moderator always; a student only when their class
// matches the question's class. The denial names the required class.
func CanAnswer(actor AuthContext, actorClass, questionClass string) (bool, string) {
	if !actor.Authenticated() {
		return false, "authentication required"
	}
	if actor.IsAdmin || actor.IsModerator {
		return true, ""
	}
	if actorClass != questionClass {
		return false, fmt.Sprintf("only students of class %s can answer this question", questionClass)
	}
	return true, ""
}

// CanDeleteContent: any authenticated identity. Ownership is deliberately
// not checked here; see DESIGN.md for the flagged policy gap.
func CanDeleteContent(actor AuthContext) (bool, string) {
	if !actor.Authenticated() {
		return false, "authentication required"
	}
	return true, ""
}

// CanModerate gates the moderator namespace (resources, books, classes).
func CanModerate(actor AuthContext) (bool, string) {
	if actor.IsAdmin || actor.IsModerator {
		return true, ""
	}
	return false, "moderator only"
}

// CanAdminister gates the admin namespace exclusively on the admin flag.
func CanAdminister(actor AuthContext) (bool, string) {
	if actor.IsAdmin {
		return true, ""
	}
	return false, "admin only"
}

// RoleForActor resolves the effective role label for display purposes.
func RoleForActor(actor AuthContext) models.UserRole {
	if actor.IsAdmin {
		return models.RoleAdmin
	}
	if actor.Role != "" {
		return actor.Role
	}
	return models.RoleStudent
}
