package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/licentry/licentry/internal/shared/errors"
)

var validate *validator.Validate

// Character-class constraints enforced at the boundary before any identifier
// reaches a query or a log row.
var (
	purchaseCodeCharsRe = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	domainCharsRe       = regexp.MustCompile(`^[A-Za-z0-9.\-_]+$`)
	domainShapeRe       = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9\-_]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9\-_]*[A-Za-z0-9])?)*$`)
)

// init initializes the validator
func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed")
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

// getFieldErrorMessage returns a user-friendly error message for a field validation error
func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateLicenseKeyChars checks a purchase code or license key against the
// allowed character class [A-Za-z0-9-_].
func ValidateLicenseKeyChars(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.NewValidationError("license key is required")
	}
	if len(key) < 10 || len(key) > 64 {
		return errors.NewValidationError("license key length must be between 10 and 64 characters")
	}
	if !purchaseCodeCharsRe.MatchString(key) {
		return errors.NewValidationError("license key contains invalid characters")
	}
	return nil
}

// ValidateDomainName checks a domain against the allowed character class
// [A-Za-z0-9.-_] plus a basic syntactic shape (no leading/trailing separators,
// no empty labels).
func ValidateDomainName(domain string) error {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return errors.NewValidationError("domain is required")
	}
	if len(domain) < 3 || len(domain) > 253 {
		return errors.NewValidationError("domain length must be between 3 and 253 characters")
	}
	if !domainCharsRe.MatchString(domain) {
		return errors.NewValidationError("domain contains invalid characters")
	}
	if !domainShapeRe.MatchString(domain) {
		return errors.NewValidationError("domain format is invalid")
	}
	return nil
}

// NormalizeDomain lowercases and trims a domain for storage and comparison.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
