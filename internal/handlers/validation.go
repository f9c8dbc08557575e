package handlers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
)

var validatorsOnce sync.Once

func registerValidators() {
	validatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("complaint_status", func(fl validator.FieldLevel) bool {
			_, err := models.ParseComplaintStatus(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("announcement_priority", func(fl validator.FieldLevel) bool {
			_, err := models.ParsePriority(fl.Field().String())
			return err == nil
		})
	})
}

// bindError turns a gin binding failure into a validation error naming the
// offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("malformed request body")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fieldProblem(fe))
	}
	return apperr.Validation("%s", strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "complaint_status":
		return "status must be one of Submitted, In Review, In Progress, Resolved"
	case "announcement_priority":
		return "priority must be Normal or High"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
