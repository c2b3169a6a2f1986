package dto

import (
	"chain-connector/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_id", validateAccountID)
		_ = v.RegisterValidation("unit", validateUnit)
	}
}

// validateAccountID accepts a hex account id, 0x prefix optional.
func validateAccountID(fl validator.FieldLevel) bool {
	_, err := domain.ParseAccountID(fl.Field().String())
	return err == nil
}

// validateUnit accepts the denominations balances can be rendered in.
func validateUnit(fl validator.FieldLevel) bool {
	_, err := domain.Unit(fl.Field().String()).Decimals()
	return err == nil
}
