package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/inkpress/blog-backend/internal/i18n"
	"golang.org/x/text/language"
)

// PasswordPolicyTag requires at least one letter and one digit.
const PasswordPolicyTag = "password_policy"

// Register installs the custom rules on gin's binding validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	return v.RegisterValidation(PasswordPolicyTag, passwordPolicy)
}

func passwordPolicy(fl validator.FieldLevel) bool {
	var hasLetter, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// fieldName reports request field names rather than Go field names.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Fields converts a binding error into one localized message per field.
// It returns nil when err is not a validation failure (e.g. malformed JSON).
func Fields(err error, tag language.Tag) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe)
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = Message(tag, fe)
	}
	return fields
}

// fieldKey drops the struct name from the namespace, so nested fields read
// "social_links.github". Confirmation mismatches are reported on the
// confirmed field.
func fieldKey(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.Index(key, "."); i >= 0 {
		key = key[i+1:]
	}
	if fe.Tag() == "eqfield" {
		key = strings.TrimSuffix(key, "_confirmation")
	}
	return key
}

// Message renders a single field error.
func Message(tag language.Tag, fe validator.FieldError) string {
	attr := i18n.Attribute(tag, fe.Field())

	switch fe.Tag() {
	case "required":
		return i18n.T(tag, i18n.ValRequired, attr)
	case "email":
		return i18n.T(tag, i18n.ValEmail, attr)
	case "min":
		return i18n.T(tag, i18n.ValMin, attr, fe.Param())
	case "max":
		return i18n.T(tag, i18n.ValMax, attr, fe.Param())
	case "url", "http_url":
		return i18n.T(tag, i18n.ValURL, attr)
	case "eqfield":
		confirmed := strings.TrimSuffix(fe.Field(), "_confirmation")
		return i18n.T(tag, i18n.ValConfirmed, i18n.Attribute(tag, confirmed))
	case PasswordPolicyTag:
		return i18n.T(tag, i18n.ValPasswordPolicy, attr)
	default:
		return i18n.T(tag, i18n.ValInvalid, attr)
	}
}
