// Package validate is a thin wrapper around go-playground/validator shared by
// config loading and request decoding.
//
// e.g. internal/handlers/api.go
//
//	type deleteRequest struct {
//	    Token    string `json:"token"`
//	    PublicID string `json:"publicId" validate:"required,max=255"`
//	}
//
// Custom tags:
//   - cron: a standard five-field cron spec or descriptor (@daily)
package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		_ = validatorInst.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
			_, err := cron.ParseStandard(fl.Field().String())
			return err == nil
		})
	})
	return validatorInst
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
