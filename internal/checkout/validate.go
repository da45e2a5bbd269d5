package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is the customer and payment form on the order page. Payment fields
// are checked for shape only and never kept.
type Form struct {
	FullName   string `json:"fullName" validate:"min=2"`
	Email      string `json:"email" validate:"shopemail"`
	Phone      string `json:"phone" validate:"digits=10"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	ZipCode    string `json:"zipCode" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"digits=16"`
	ExpiryDate string `json:"expiryDate" validate:"expiry"`
	CVV        string `json:"cvv" validate:"cvv"`
}

// ValidationErrors maps a form field to the message shown next to it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

const requiredMessage = "This field is required"

var fieldMessages = map[string]string{
	"fullName":   "Please enter a valid name",
	"email":      "Please enter a valid email address",
	"phone":      "Please enter a valid 10-digit phone number",
	"cardNumber": "Please enter a valid 16-digit card number",
	"expiryDate": "Please enter a valid expiry date (MM/YY)",
	"cvv":        "Please enter a valid CVV",
}

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
	nonDigit = regexp.MustCompile(`\D`)
)

var formValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("shopemail", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cvvRe.MatchString(fl.Field().String())
	}))
	// digits=N: exactly N digits once separators are stripped.
	must(v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(nonDigit.ReplaceAllString(fl.Field().String(), "")) == n
	}))
	return v
}

func (f Form) normalized() Form {
	trim := strings.TrimSpace
	return Form{
		FullName:   trim(f.FullName),
		Email:      trim(f.Email),
		Phone:      trim(f.Phone),
		Address:    trim(f.Address),
		City:       trim(f.City),
		State:      trim(f.State),
		ZipCode:    trim(f.ZipCode),
		CardNumber: trim(f.CardNumber),
		ExpiryDate: trim(f.ExpiryDate),
		CVV:        trim(f.CVV),
	}
}

// Validate checks every field and reports all failures at once.
func (f Form) Validate() error {
	err := formValidator.Struct(f.normalized())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = requiredMessage
		}
		out[fe.Field()] = msg
	}
	return out
}
