package handler

import (
	"strings"
	"time"

	"automarket/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request structs:
// vehicle_year (MinVehicleYear up to next year), notblank, and the listing
// enums car_color and car_condition.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"vehicle_year":  validVehicleYear,
		"car_color":     oneOf(domain.Colors),
		"car_condition": oneOf(domain.Conditions),
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

func validVehicleYear(fl validator.FieldLevel) bool {
	y := fl.Field().Int()
	return y >= domain.MinVehicleYear && y <= int64(time.Now().Year()+1)
}
