package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCredentials is returned when platform credentials are missing or placeholders
var ErrInvalidCredentials = errors.New("config: missing or placeholder credentials")

// placeholderMarkers are fragments found in sample configuration values
var placeholderMarkers = []string{
	"your-", "your_", "changeme", "change-me", "change_me",
	"placeholder", "replace-me", "replace_me", "xxxx", "<", ">", "${",
}

// IsPlaceholder reports whether a credential value looks like a sample value
func IsPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return false
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func newCredentialValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notplaceholder", func(fl validator.FieldLevel) bool {
		return !IsPlaceholder(fl.Field().String())
	})
	return v
}

// ValidateCredentials checks the storefront and marketplace credentials.
// A failure here must stop the process before any sync runs.
func (c *Config) ValidateCredentials() error {
	v := newCredentialValidator()

	problems := make([]string, 0)
	for section, target := range map[string]any{
		"shopify": &c.Shopify,
		"mirakl":  &c.Mirakl,
	} {
		err := v.Struct(target)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s.%s: %s", section, toSnakeCase(fe.Field()), describeTag(fe.Tag())))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.Join(problems, "; "))
	}
	return nil
}

func describeTag(tag string) string {
	switch tag {
	case "required", "required_without":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "notplaceholder":
		return "still holds a placeholder value"
	default:
		return "failed " + tag
	}
}

// toSnakeCase converts a Go field name to its config key (APIBaseURL -> api_base_url)
func toSnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			if prevLower || (prevUpper && nextLower) {
				b.WriteByte('_')
			}
		}
		if isUpper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
