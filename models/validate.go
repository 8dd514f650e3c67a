package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/padraicbc/f1picks/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tags and folds field failures into a single
// validation error naming every offending field.
func validateStruct(entity string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, "validate "+entity, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return apperr.New(apperr.KindValidation, "validate "+entity, "invalid fields: %s", strings.Join(fields, ", "))
}

// trimOptional trims s and turns an empty value into nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
