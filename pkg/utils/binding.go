package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog/log"
)

type customTag struct {
	tag  string
	fn   validator.Func
	text string
}

var (
	// Translator renders validator errors as English sentences.
	Translator ut.Translator

	registerOnce sync.Once
	registerErr  error

	customTags = []customTag{
		{"ymd", validateYMD, "{0} must be a date in YYYY-MM-DD format"},
		{"hhmm", validateClock, "{0} must be a time in HH:MM or HH:MM:SS format"},
		{"phone10", validatePhone, "{0} must be exactly 10 digits"},
	}
)

// RegisterValidators installs JSON field naming, English translations and the
// custom tags on gin's validator. Safe to call more than once; every call
// returns the outcome of the first.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("binding engine is not a go-playground validator")
		} else {
			Translator, registerErr = setupValidator(v, customTags)
		}
		if registerErr != nil {
			log.Error().Err(registerErr).Msg("validator setup failed")
		}
	})
	return registerErr
}

func setupValidator(v *validator.Validate, tags []customTag) (ut.Translator, error) {
	_en := en.New()
	uni := ut.New(_en, _en)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	// Use JSON/form tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	for _, ct := range tags {
		if err := v.RegisterValidation(ct.tag, ct.fn); err != nil {
			return nil, fmt.Errorf("register %q validator: %w", ct.tag, err)
		}
		if err := registerTranslation(v, trans, ct.tag, ct.text); err != nil {
			return nil, fmt.Errorf("register %q translation: %w", ct.tag, err)
		}
	}
	return trans, nil
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) error {
	return v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidationDetails converts a binding error into {field: message} when it
// comes from the validator, or the plain error string otherwise.
func ValidationDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || Translator == nil {
		return err.Error()
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(Translator)
	}
	return out
}

func validateYMD(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := ParseDate(s, nil)
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := ParseClock(s)
	return err == nil
}

func validatePhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return ValidatePhoneNumber(s) == nil
}
