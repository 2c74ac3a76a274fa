package auth

import "github.com/shikhoron/qna-service/internal/models"

// AuthContext is the resolved identity for one request. It is produced once
// by the session middleware and threaded explicitly into every policy and
// service call; nothing is stashed in ambient per-request state.
type AuthContext struct {
	UserID      uint            `json:"user_id"`
	Role        models.UserRole `json:"role"`
	IsAdmin     bool            `json:"is_admin"`
	IsModerator bool            `json:"is_moderator"`
}

// Anonymous is the zero identity used for unauthenticated requests.
var Anonymous = AuthContext{}

// Authenticated reports whether the actor carries an identity. An admin
// session counts as authenticated even when it has no user row behind it.
func (a AuthContext) Authenticated() bool {
	return a.UserID != 0 || a.IsAdmin
}
