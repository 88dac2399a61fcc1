package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsEmail reports whether term is syntactically an email address.
// It is the gate of the identity pipeline.
func IsEmail(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	return validate.Var(term, "required,email") == nil
}
