package flights

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rules shared by everything that accepts route input.
const (
	AirportCodeRule = "required,len=3,alpha"
	EmailRule       = "required,email"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	RegisterJsonNames(v)
	return v
}

// RegisterJsonNames makes v report fields by their json name.
func RegisterJsonNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

func describe(fe validator.FieldError) string {
	value := fmt.Sprint(fe.Value())
	switch fe.Tag() {
	case "required":
		return "required"
	case "len", "alpha":
		return fmt.Sprintf("%q is not a 3-letter airport code", value)
	case "datetime":
		return fmt.Sprintf("%q is not a YYYY-MM-DD date", value)
	case "email":
		return fmt.Sprintf("%q is not an email address", value)
	}
	return fmt.Sprintf("%q fails %s", value, fe.Tag())
}

// ValidationErrorOf converts the first failure in a validator error into a
// *ValidationError, it returns nil for any other error.
func ValidationErrorOf(err error) *ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return nil
	}
	return &ValidationError{Field: errs[0].Field(), Reason: describe(errs[0])}
}

func validationError(err error) error {
	if verr := ValidationErrorOf(err); verr != nil {
		return verr
	}
	return err
}

// fieldError is validationError for single values checked with Var, which
// carry no field name.
func fieldError(field, value string, err error) error {
	verr := ValidationErrorOf(err)
	if verr == nil {
		return err
	}
	verr.Field = field
	if verr.Reason == "required" {
		verr.Reason = fmt.Sprintf("%q is not a 3-letter airport code", value)
	}
	return verr
}
