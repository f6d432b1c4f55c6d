package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/retailpos/backend/internal/domain/sale"
)

// RegisterValidators installs custom binding validators on gin's
// validator engine. Call once before mounting routes.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("payment_method", validPaymentMethod)
}

func validPaymentMethod(fl validator.FieldLevel) bool {
	method, ok := fl.Field().Interface().(sale.PaymentMethod)
	if !ok {
		return false
	}
	return method.IsValid()
}
