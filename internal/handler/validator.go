package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/daikitazaki/foodswho/internal/view"
)

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	V *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{V: view.NewValidator()}
}

func (cv *Validator) Validate(i any) error {
	return cv.V.Struct(i)
}
