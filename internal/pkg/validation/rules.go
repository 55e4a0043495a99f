package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// EmailPattern accepts lower-cased addresses as stored after normalization
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// DivisionPattern is a single class division label such as "A" or "B2"
	DivisionPattern = `^[A-Za-z][A-Za-z0-9]{0,3}$`

	// AcademicYearPattern matches "2024-2025"
	AcademicYearPattern = `^\d{4}-\d{4}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email        *regexp.Regexp
	Division     *regexp.Regexp
	AcademicYear *regexp.Regexp
}{
	Email:        regexp.MustCompile(EmailPattern),
	Division:     regexp.MustCompile(DivisionPattern),
	AcademicYear: regexp.MustCompile(AcademicYearPattern),
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in errors are the json
// (or form) names so messages match the request payload.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates s and converts failures into a validation app error
// naming the first offending field.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}

	fields := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	first := verrs[0]
	return &apperrors.CustomError{
		Err:     apperrors.ErrValidationFailed,
		Message: message(first),
		Field:   first.Field(),
		Details: fields,
	}
}

// IsEmail reports whether s looks like a normalized email address
func IsEmail(s string) bool {
	return CompiledPatterns.Email.MatchString(s)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	default:
		return field + " is invalid"
	}
}
