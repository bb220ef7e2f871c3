// Package form validates the login, register and connection forms before any
// request leaves the client.
package form

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the address shape the service accepts.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

// LoginForm is the login screen's input.
type LoginForm struct {
	Email    string `json:"email" validate:"webemail"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// RegisterForm is the register screen's input. ConfirmPassword never leaves
// the client.
type RegisterForm struct {
	Username        string `json:"username" validate:"min=3"`
	Email           string `json:"email" validate:"webemail"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

// ConnectionForm is the subset of connection fields checked before a test or
// save call.
type ConnectionForm struct {
	Name   string `json:"name" validate:"required"`
	DBType string `json:"db_type" validate:"oneof=postgres mysql sqlite snowflake mssql"`
	Port   string `json:"port" validate:"omitempty,numeric"`
}

// messages maps "<field>.<tag>" to the text shown under the field.
var messages = map[string]string{
	"email.webemail":           "Please enter a valid email address",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"username.min":             "Username must be at least 3 characters",
	"confirm_password.eqfield": "Passwords do not match",
	"name.required":            "Name is required",
	"db_type.oneof":            "Please select a database type",
	"port.numeric":             "Port must be a number",
}

// Errors maps a field's JSON name to its message. A nil Errors means the
// form is valid.
type Errors map[string]string

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string { return e[field] }

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a validator with the webemail rule registered and field names
// reported by their JSON tag. It panics if the rule cannot be registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("webemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		panic("form: register webemail: " + err.Error())
	}
	return &Validator{v: v}
}

// ValidEmail reports whether s is a non-empty address matching the accepted
// pattern.
func ValidEmail(s string) bool {
	return s != "" && emailPattern.MatchString(s)
}

// Check validates a form struct and returns its field errors, or nil.
func (val *Validator) Check(form any) Errors {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fallbackMessage(fe)
		}
		out[field] = msg
	}
	return out
}

func fallbackMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}
