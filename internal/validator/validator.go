package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the process-wide validator, building it on first use.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRequest checks the validate tags of req and returns an error marked
// ErrValidation with one reportable detail per failing field.
func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
