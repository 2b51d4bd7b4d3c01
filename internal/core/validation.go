package core

// validation.go holds the shared validator for records and request payloads.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages read "num_cde", not "NumCde".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("calc_method", func(fl validator.FieldLevel) bool {
		return CalculationMethod(fl.Field().String()).Valid()
	})
	return v
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("required field %s is empty", fe.Field()))
		case "datetime":
			parts = append(parts, fmt.Sprintf("invalid date in %s: %v", fe.Field(), fe.Value()))
		case "uuid":
			parts = append(parts, fmt.Sprintf("invalid project uuid: %v", fe.Value()))
		case "calc_method":
			parts = append(parts, fmt.Sprintf("invalid calculation method: %v", fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
