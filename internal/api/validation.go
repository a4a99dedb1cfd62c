package api

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/vytor/studyflash/internal/errors"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateStruct checks v against its validate tags and reports the first
// failing field as a VALIDATION_ERROR.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.NewValidationError(fe.Field(), fe.Translate(translator))
	}
	return errors.NewBadRequestError(err.Error())
}

type createProfileRequest struct {
	Username        string `json:"username" validate:"required,max=64"`
	TZOffsetMinutes *int   `json:"tz_offset_minutes" validate:"omitempty,min=-720,max=840"`
}

type createDeckRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type createCardRequest struct {
	Front string `json:"front" validate:"required,max=4096"`
	Back  string `json:"back" validate:"max=4096"`
}

type reviewRequest struct {
	Rating      string  `json:"rating" validate:"required,oneof=easy medium hard"`
	TimeSeconds float64 `json:"time_seconds" validate:"gte=0"`
}
