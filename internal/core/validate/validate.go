// Package validate maps registration forms to per-field error messages.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/niksmo/onboarding/internal/core/domain"
)

// FieldErrors maps a form field (its JSON name) to a human readable message.
// Fields without an error are absent.
type FieldErrors map[string]string

func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

var (
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	gstinRe = regexp.MustCompile(
		`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`,
	)
)

type messages map[string]map[string]string

var (
	taskerMessages = messages{
		"name": {"required": "Name is required"},
		"phone": {
			"required": "Phone number is required",
			"phone":    "Invalid phone number",
		},
	}

	sellerMessages = messages{
		"sellerName": {"required": "Seller name is required"},
		"shopName":   {"required": "Shop name is required"},
		"shopImage":  {"required": "Shop image is required"},
		"gstNumber": {
			"required": "GST number is required",
			"gstin":    "Invalid GST number",
		},
		"sellerPhoneNumber": {
			"required": "Phone number is required",
			"phone":    "Invalid phone number",
		},
	}

	productMessages = messages{
		"name":   {"required": "Product name is required."},
		"mrp":    {"required": "MRP is required."},
		"msp":    {"required": "MSP is required."},
		"image1": {"required": "First image is required."},
		"image2": {"required": "Second image is required."},
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, "phone", phoneRe)
	mustRegister(v, "gstin", gstinRe)
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err) // develop mistake
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func Tasker(v domain.TaskerDetails) FieldErrors {
	return check(v, taskerMessages)
}

func Seller(v domain.SellerDetails) FieldErrors {
	return check(v, sellerMessages)
}

func Product(v domain.ProductDetails) FieldErrors {
	return check(v, productMessages)
}

// Phone reports whether s is exactly ten ASCII digits.
func Phone(s string) bool {
	return phoneRe.MatchString(s)
}

// GSTIN reports whether s has the fixed 15 character GST number structure.
func GSTIN(s string) bool {
	return gstinRe.MatchString(s)
}

func check(v any, msgs messages) FieldErrors {
	out := FieldErrors{}

	err := validate.Struct(v)
	if err == nil {
		return out
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "Invalid form data"
		return out
	}

	for _, fe := range ve {
		out[fe.Field()] = msgs.lookup(fe.Field(), fe.Tag())
	}
	return out
}

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field][tag]; ok {
		return msg
	}
	return "Invalid value"
}
