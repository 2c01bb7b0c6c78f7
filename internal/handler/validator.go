package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Neruaka/jana-distribution/internal/apperror"
)

// Validator adapts go-playground/validator to echo's Validator
// interface.  Violations surface as a 400 with one entry per field in
// the envelope's errors array, named after the JSON tag.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
		})
	}
	return apperror.BadRequest("Requête invalide").WithFields(fields...)
}

// messageFor translates the most common constraint tags; anything else
// falls back to naming the failed rule.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "email":
		return "Adresse email invalide"
	case "min":
		return "Valeur trop courte (minimum " + fe.Param() + ")"
	case "max":
		return "Valeur trop longue (maximum " + fe.Param() + ")"
	case "gt":
		return "La valeur doit être supérieure à " + fe.Param()
	case "gte":
		return "La valeur doit être supérieure ou égale à " + fe.Param()
	}
	return "Contrainte non respectée: " + fe.Tag()
}
