package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

const passwordSpecials = "#?!@$%^&*-_"

var validationMessages = map[string]string{
	"required": "Not exist",
	"min":      "Too short",
	"max":      "Too long",
	"len":      "Length not valid",
	"otp":      "Not valid",
	"password": "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character",
	"digits":   "Phone number must be a valid number",
}

// Validator owns a go-playground validator carrying the request rules.
// Error namespaces use JSON field names.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the request validator. OTP codes must be otpLength digits.
func NewValidator(otpLength int) (*Validator, error) {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("password", validPassword); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("digits", validDigits); err != nil {
		return nil, err
	}
	err := v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == otpLength && allDigits(s)
	})
	if err != nil {
		return nil, err
	}
	return &Validator{v: v}, nil
}

// validPassword wants 8 to 20 characters drawn from letters, digits and
// the special set, with at least one of each class.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 8 || len(s) > 20 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

func validDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= 10 && len(s) <= 20 && allDigits(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type normalizer interface {
	normalize()
}

// Bind strictly decodes the request body into dst and validates it.
// An empty body decodes as an empty object.
func (v *Validator) Bind(c *gin.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return decodeError(err)
	}

	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	if err := v.v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.NewServerError("validate request", err)
		}
		fields := domain.FieldErrors{}
		for _, fe := range verrs {
			fields = fields.With(fieldPath(fe.Namespace()), validationMessage(fe.Tag()))
		}
		return domain.NewClientError(http.StatusBadRequest, domain.OriginBody, fields, nil)
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	path, msg := "body", "Not valid"
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		path = "body." + typeErr.Field
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		path, msg = "body."+name, "Not allowed"
	}
	return domain.NewClientError(http.StatusBadRequest, domain.OriginBody, domain.FieldErrors{}.With(path, msg), err)
}

// fieldPath turns "registerRequest.sfiaScores[AIFL]" into "body.sfiaScores.AIFL".
func fieldPath(namespace string) string {
	_, rest, ok := strings.Cut(namespace, ".")
	if !ok {
		rest = namespace
	}
	rest = strings.NewReplacer("[", ".", "]", "").Replace(rest)
	return "body." + rest
}

func validationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Not valid"
}
