package dto

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxBookIDLength bounds external catalog identifiers.
const MaxBookIDLength = 64

// BookURI binds the :book_id path segment.
type BookURI struct {
	BookID string `uri:"book_id" binding:"required,bookid"`
}

// RegisterValidators installs the custom tags on gin's validator engine.
// Must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("bookid", validateBookID)
}

// validateBookID accepts a single external book id: not blank, bounded, no list separator.
func validateBookID(fl validator.FieldLevel) bool {
	return IsValidBookID(fl.Field().String())
}

// IsValidBookID reports whether id can be stored as a single external book id.
func IsValidBookID(id string) bool {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" || trimmed != id {
		return false
	}
	return len(id) <= MaxBookIDLength && !strings.Contains(id, ",")
}
