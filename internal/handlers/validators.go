package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// registerCustomValidators installs binding validations the stock tag set
// cannot express. "dgt0" checks that a decimal amount is strictly positive;
// line direction carries the sign, so a negative or zero amount is always a
// caller mistake.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
		amount, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && amount.IsPositive()
	})
}
