package controllers

import (
	"errors"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var statusRules = map[string]validator.Func{
	"order_status": func(fl validator.FieldLevel) bool {
		return models.OrderStatus(fl.Field().String()).Valid()
	},
	"offer_status": func(fl validator.FieldLevel) bool {
		return models.OfferStatus(fl.Field().String()).Valid()
	},
	"role_preference": func(fl validator.FieldLevel) bool {
		return models.RolePreference(fl.Field().String()).Valid()
	},
}

// RegisterValidators adds the enum binding rules to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	for tag, rule := range statusRules {
		if err := v.RegisterValidation(tag, rule); err != nil {
			return err
		}
	}
	return nil
}
