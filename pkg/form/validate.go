package form

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldErrors maps json field names to one message each.
type FieldErrors map[string]string

// Messages maps "field.tag" or "field" to a user-facing message.
type Messages map[string]string

// Schema is a form with its own messages.
type Schema interface {
	Messages() Messages
}

type service struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	once sync.Once
	svc  *service
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,13}$`)

func get() *service {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})

		svc = &service{validate: v, trans: trans}
	})
	return svc
}

// strongPassword requires an ASCII lower and upper case letter, a digit and
// a character that is none of those.
func strongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

// Validate checks s and returns the first message per field, or nil when s
// is valid.
func Validate(s Schema) FieldErrors {
	err := get().validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"": err.Error()}
	}

	msgs := s.Messages()
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(msgs, fe, get().trans)
	}
	return out
}

func message(msgs Messages, fe validator.FieldError, trans ut.Translator) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	return fe.Translate(trans)
}
