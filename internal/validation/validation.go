// Package validation wraps a shared validator/v10 instance and turns its errors into
// field maps suitable for JSON bodies and form re-rendering.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	validator "github.com/go-playground/validator/v10"

	"github.com/crucial707/reminders/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the process-wide validator. Field names in errors are taken from json tags.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		// utf8 rejects byte sequences PostgreSQL would refuse on insert.
		_ = validate.RegisterValidation("utf8", func(fl validator.FieldLevel) bool {
			return utf8.ValidString(fl.Field().String())
		})
	})
	return validate
}

// Struct validates v and returns nil when it is valid. Otherwise it returns a map of
// field name to a short message ("required", "max 255 characters").
// Errors that are not field errors are reported under the "_" key.
func Struct(v any) map[string]string {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "max " + fe.Param() + " characters"
	case "min":
		return "min " + fe.Param() + " characters"
	default:
		return "invalid"
	}
}

// Reminder trims both fields and validates the result. The trimmed input is returned
// so callers store exactly what was checked.
func Reminder(in models.ReminderInput) (models.ReminderInput, map[string]string) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in, Struct(in)
}
