// Package validate checks request and config structs against their
// `validate` tags and turns failures into human-readable messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/sakif/phrasebook/internal/apperror"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
	initErr    error
)

func setup() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		initErr = fmt.Errorf("validate: registering translations: %w", err)
		return
	}

	// Report fields by the name the client sent: json first, then mapstructure
	// for config structs.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		initErr = fmt.Errorf("validate: registering notblank: %w", err)
		return
	}
	if err := validate.RegisterTranslation("notblank", translator, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} must not be blank", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", fe.Field())
		return t
	}); err != nil {
		initErr = fmt.Errorf("validate: registering notblank translation: %w", err)
	}
}

// notBlank fails strings that are empty after trimming whitespace.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Struct validates s. Failures come back as an *apperror.AppError wrapping
// ErrValidation, with every failed rule translated and joined into Message and
// the first failing field in Field.
func Struct(s any) error {
	once.Do(setup)
	if initErr != nil {
		return initErr
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Translate(translator))
	}
	return apperror.ValidationFailed(ve[0].Field(), strings.Join(msgs, "; "))
}
