package validator

// ===== AUTH =====

// RegisterRequest represents the account signup payload
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	InstitutionName string `json:"institution_name" validate:"required,max=200"`
	Class           string `json:"class" validate:"required,max=50"`
	Role            string `json:"role" validate:"omitempty,oneof=student teacher"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateRequest carries partial profile edits; nil fields stay unchanged
type ProfileUpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=100"`
	InstitutionName *string `json:"institution_name" validate:"omitempty,max=200"`
	Class           *string `json:"class" validate:"omitempty,max=50"`
	Bio             *string `json:"bio" validate:"omitempty,max=1000"`
	Bookmarks       []uint  `json:"bookmarks" validate:"omitempty,max=200"`
}

// ===== QUESTIONS AND ANSWERS =====

// QuestionCreateRequest represents the question post payload.
// Files travel alongside as multipart parts, capped at question_files.
type QuestionCreateRequest struct {
	Title       string   `json:"title" validate:"required,question_title"`
	Description string   `json:"description" validate:"required,max=10000"`
	Class       string   `json:"class" validate:"required,max=50"`
	Subject     []string `json:"subject" validate:"omitempty,max=10,dive,max=50"`
}

// AnswerCreateRequest represents the answer post payload
type AnswerCreateRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// VoteRequest represents a vote cast on a question or answer
type VoteRequest struct {
	Value int `json:"value" validate:"required,vote_value"`
}

// ReportRequest represents a content report
type ReportRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ===== CATALOG =====

// ClassCreateRequest represents a new class with optional sections
type ClassCreateRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=100"`
	Sections []string `json:"sections" validate:"omitempty,max=26,dive,min=1,max=50"`
}

// SectionRequest adds a section to an existing class
type SectionRequest struct {
	Section string `json:"section" validate:"required,min=1,max=50"`
}

// ResourceRequest represents a moderator-curated resource
type ResourceRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Link        string `json:"link" validate:"omitempty,url,max=500"`
	Class       string `json:"class" validate:"required,max=50"`
	Section     string `json:"section" validate:"omitempty,max=50"`
	Group       string `json:"group" validate:"omitempty,max=50"`
}

// BookRequest represents a moderator-curated book listing
type BookRequest struct {
	Title       string  `json:"title" validate:"required,max=300"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Price       float64 `json:"price" validate:"omitempty,min=0"`
	Class       string  `json:"class" validate:"required,max=50"`
	Section     string  `json:"section" validate:"omitempty,max=50"`
	Group       string  `json:"group" validate:"omitempty,max=50"`
}

// ===== ADMIN =====

// ModeratorCreateRequest promotes an existing account or creates a new one
type ModeratorCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Class    string `json:"class" validate:"omitempty,max=50"`
}

// ModeratorUpdateRequest carries partial moderator edits
type ModeratorUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Class    *string `json:"class" validate:"omitempty,max=50"`
}
