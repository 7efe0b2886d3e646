package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/posterize/internal/colour"
	"github.com/jmylchreest/posterize/internal/seed"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance configures and returns the shared validator used by the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Report fields by their YAML keys.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
			return colour.IsValidAlgorithm(colour.Algorithm(fl.Field().String()))
		})

		_ = v.RegisterValidation("weighting", func(fl validator.FieldLevel) bool {
			_, err := colour.ParseWeighting(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("character", func(fl validator.FieldLevel) bool {
			_, err := colour.ParseCharacter(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("harmony", func(fl validator.FieldLevel) bool {
			_, err := colour.ParseHarmonyMode(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("remap", func(fl validator.FieldLevel) bool {
			for _, m := range colour.ValidRemapModes() {
				if string(m) == fl.Field().String() {
					return true
				}
			}
			return false
		})

		_ = v.RegisterValidation("seed_mode", func(fl validator.FieldLevel) bool {
			_, err := seed.ParseMode(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// ValidationError reports the first recipe field that failed validation.
type ValidationError struct {
	Field string
	Tag   string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed validation for tag '%s' (value %v)", e.Field, e.Tag, e.Value)
}

// Unwrap lets callers match recipe problems with colour.ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return colour.ErrInvalidInput
}

// convertValidationError turns validator errors into a ValidationError.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		}
	}

	return fmt.Errorf("%w: %v", colour.ErrInvalidInput, err)
}
