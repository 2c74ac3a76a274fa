package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP status codes by the handlers
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrBookNotFound     = errors.New("book not found")

	ErrEmailTaken       = errors.New("email already registered")
	ErrClassNameTaken   = errors.New("class name already exists")
	ErrUnauthorized     = errors.New("authentication required")
	ErrAccountSuspended = errors.New("account is suspended")
)

// PermissionError carries who tried what on which resource
type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError represents a domain rule violation
type BusinessRuleError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}
