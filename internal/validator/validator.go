// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Wall-clock shift times are submitted as HH:MM strings.
var clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("commission_mode", validateCommissionMode)
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("expense_frequency", validateExpenseFrequency)
		_ = v.RegisterValidation("expense_status", validateExpenseStatus)
		_ = v.RegisterValidation("payroll_status", validatePayrollStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("clock_time", validateClockTime)
	}
}

func validateCommissionMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "gross", "post_expense":
		return true
	}
	return false
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "combustible", "mantenimiento", "reparacion", "seguro", "impuestos", "otros",
		"seguridad_social", "cuota_autonomos", "cuota_asociacion", "gestoria", "suministros":
		return true
	}
	return false
}

func validateExpenseFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "quarterly", "biannual", "annual":
		return true
	}
	return false
}

func validateExpenseStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "approved", "completed":
		return true
	}
	return false
}

func validatePayrollStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "paid":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "driver":
		return true
	}
	return false
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRegex.MatchString(fl.Field().String())
}
