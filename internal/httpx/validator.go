package httpx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"anitrack/internal/platform/crypto"

	"github.com/go-playground/validator/v10"
)

var (
	validate   *validator.Validate
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("clock", validateClock)
	validate.RegisterValidation("weekday", validateWeekday)
	validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return crypto.ValidatePasswordStrength(fl.Field().String()) == nil
	})
}

// validateClock accepts HH:MM broadcast times.
func validateClock(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

// validateWeekday accepts "Monday" as well as the plural "Mondays" used by the
// metadata API.
func validateWeekday(fl validator.FieldLevel) bool {
	day := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	for _, d := range []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		if day == d || day == d+"s" {
			return true
		}
	}
	return false
}

func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	var details []ErrorDetail
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between %s", field, param)
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "clock":
			message = fmt.Sprintf("%s must be a HH:MM time", field)
		case "weekday":
			message = fmt.Sprintf("%s must be a day of the week", field)
		case "password_strength":
			message = fmt.Sprintf("%s must be at least 8 characters with a letter and a number", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}

	return details
}
