package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/premiumcars/listingsheet/internal/model"
)

// RecordInput is the body of a create or update.
type RecordInput model.Draft

type recordRules struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	Price        string   `json:"price" validate:"max=32"`
	Color        string   `json:"color" validate:"max=100"`
	FuelType     string   `json:"fuelType" validate:"max=100"`
	Transmission string   `json:"transmission" validate:"max=100"`
	Images       []string `json:"images" validate:"max=40,dive,required,base64"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalize returns a copy of in ready for storage. Title and description
// are kept as sent; only the content image list is made non-nil.
func (in RecordInput) normalize() RecordInput {
	in.Content = in.Content.Normalize()
	return in
}

// Validate checks in and returns a *ValidationError for the first bad field.
func (in RecordInput) Validate() error {
	rules := recordRules{
		Title:        strings.TrimSpace(in.Title),
		Price:        in.Content.Price,
		Color:        in.Content.Color,
		FuelType:     in.Content.FuelType,
		Transmission: in.Content.Transmission,
		Images:       in.Content.Images,
	}
	if in.Description != nil {
		rules.Description = *in.Description
	}

	err := validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "body", Message: "Invalid request"}
	}
	return toValidationError(fieldErrs[0])
}

func toValidationError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	if strings.HasPrefix(field, "images[") {
		return &ValidationError{Field: field, Message: "Images must be base64 encoded"}
	}

	label := strings.ToUpper(field[:1]) + field[1:]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: label + " is required"}
	case "max":
		if fe.Kind() == reflect.Slice {
			return &ValidationError{Field: field, Message: "At most " + fe.Param() + " images are allowed"}
		}
		return &ValidationError{Field: field, Message: label + " must be at most " + fe.Param() + " characters"}
	default:
		return &ValidationError{Field: field, Message: label + " is invalid"}
	}
}
