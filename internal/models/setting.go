package models

// Well-known setting keys.
const (
	SettingDriverBaseSalary     = "driver_base_salary"
	SettingDriverCommissionRate = "driver_commission_rate"
)

// Setting is one key/value pair in the configuration store. Known keys have
// env-config fallbacks, so an empty table is a valid state.
type Setting struct {
	Base
	Key   string `gorm:"uniqueIndex;not null" json:"key"`
	Value string `gorm:"not null" json:"value"`
}
