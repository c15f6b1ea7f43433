package domain

import "time"

// TemperatureUnit is the unit journal weather entries display in.
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "CELSIUS"
	UnitFahrenheit TemperatureUnit = "FAHRENHEIT"
)

// Preferences is the per-user settings record created together with the user
// at registration.
type Preferences struct {
	UserID          string
	TemperatureUnit TemperatureUnit
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
