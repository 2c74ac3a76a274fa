package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shikhoron/qna-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRegister validates account signup business rules
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	// Admin and moderator roles are never self-assigned
	if req.Role != "" && req.Role != string(models.RoleStudent) && req.Role != string(models.RoleTeacher) {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "must be student or teacher",
			Value:   req.Role,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateQuestionCreate validates question post business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest, fileCount int) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if fileCount > models.MaxFilesPerPost {
		errors = append(errors, ValidationError{
			Field:   "files",
			Message: "too many attachments",
			Value:   fileCount,
			Rule:    "max_files",
		})
	}

	return errors
}

// ValidateAnswerCreate validates answer post business rules
func (bv *BusinessValidator) ValidateAnswerCreate(req *AnswerCreateRequest, fileCount int) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if fileCount > models.MaxFilesPerPost {
		errors = append(errors, ValidationError{
			Field:   "files",
			Message: "too many attachments",
			Value:   fileCount,
			Rule:    "max_files",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Vote values are exactly +1 or -1
	bv.validate.RegisterValidation("vote_value", func(fl validator.FieldLevel) bool {
		value := fl.Field().Int()
		return value == 1 || value == -1
	})

	// Role validation against the known role set
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		switch role {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin, models.RoleModerator:
			return true
		}
		return false
	})

	// Title validation (1-300 characters after trimming)
	bv.validate.RegisterValidation("question_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 300
	})
}
