// Package validation checks form structs against their `validate` tags and
// reports every failed constraint at once, so a front end can re-show all
// outstanding problems.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/go-playground/validator/v10"
)

// Violation is one failed constraint. Field is the JSON path of the input,
// e.g. "email" or "fields[1].type"; Rule is the validator tag that failed.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (v Violation) String() string {
	switch v.Rule {
	case "required":
		return v.Field + " is required"
	case "email", "ngemail":
		return v.Field + " must be a valid email address"
	case "min", "minlength":
		return fmt.Sprintf("%s must be at least %s characters long", v.Field, v.Param)
	default:
		return fmt.Sprintf("%s failed %q", v.Field, v.Rule)
	}
}

// ValidationError lists every violation found in one submission.
// It matches common.ErrorValidation with errors.Is.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorValidation
}

// Has reports whether field failed rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

// Add appends a violation found outside of struct tags.
func (e *ValidationError) Add(field, rule string) {
	e.Violations = append(e.Violations, Violation{Field: field, Rule: rule})
}

// OrNil returns e as an error, or nil when it holds no violations.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range map[string]validator.Func{
		"ngemail":   isFormEmail,
		"minlength": hasMinLength,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// formEmailPattern is the address syntax browsers' form libraries accept:
// dot-atom local part and a host of one or more labels, so "ann@localhost"
// is valid.
var formEmailPattern = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+)*" +
	"@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// isFormEmail backs the ngemail tag. At most 254 characters in total and
// 64 before the '@'. An empty value passes and is left to required.
func isFormEmail(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	local, _, ok := strings.Cut(s, "@")
	if !ok || len(s) > 254 || len(local) == 0 || len(local) > 64 {
		return false
	}
	return formEmailPattern.MatchString(s)
}

// hasMinLength backs the minlength tag: the length is counted in UTF-16
// code units, as a browser counts it. An empty value passes.
func hasMinLength(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	s := fl.Field().String()
	return s == "" || len(utf16.Encode([]rune(s))) >= n
}

// Struct validates s. It returns nil, a *ValidationError, or the
// validator's own error when s is not a struct.
func Struct(s any) error {
	verr := &ValidationError{}
	if err := collect(s, verr); err != nil {
		return err
	}
	return verr.OrNil()
}

// Collect validates s and appends its violations to verr, so callers can
// merge tag-driven checks with their own.
func Collect(s any, verr *ValidationError) error {
	return collect(s, verr)
}

func collect(s any, verr *ValidationError) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		verr.Violations = append(verr.Violations, Violation{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return nil
}

// fieldPath drops the top-level struct name from a validator namespace:
// "Form.fields[0].label" becomes "fields[0].label".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
