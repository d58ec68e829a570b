package dto

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	maxIDLength    = 128
	maxTitleLength = 512
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) ToMap() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func ToMap(errs []ValidationError) map[string]string {
	result := make(map[string]string)
	for _, e := range errs {
		result[e.Field] = e.Message
	}
	return result
}

func ToResponse(errs []ValidationError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func validateRequiredURL(field, value string) []ValidationError {
	value = strings.TrimSpace(value)
	if value == "" {
		return []ValidationError{{Field: field, Message: "is required"}}
	}
	return validateURL(field, &value)
}

func validateURL(field string, urlVal *string) []ValidationError {
	var errs []ValidationError
	if urlVal != nil && *urlVal != "" {
		u, err := url.ParseRequestURI(strings.TrimSpace(*urlVal))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field, Message: "invalid URL format"})
		}
	}
	return errs
}

func validateLength(field string, value *string, max int) []ValidationError {
	var errs []ValidationError
	if value != nil && len(*value) > max {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)})
	}
	return errs
}

func validateNotBlank(field string, value *string) []ValidationError {
	var errs []ValidationError
	if value != nil && strings.TrimSpace(*value) == "" {
		errs = append(errs, ValidationError{Field: field, Message: "cannot be blank"})
	}
	return errs
}
