package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/vehiclepass/core/units"
)

// CredentialsConfig holds the account credentials and target vehicle.
type CredentialsConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	VIN      string `json:"vin"`
}

// Validate checks mandatory fields. The VIN is required for telemetry and
// command routing.
func (c CredentialsConfig) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	if c.VIN == "" {
		return fmt.Errorf("vin is required")
	}
	return nil
}

// CloudConfig holds the cloud endpoints and client identity.
type CloudConfig struct {
	AuthURL       string `json:"auth_url"`
	TokenURL      string `json:"token_url"`
	TelemetryURL  string `json:"telemetry_url"`
	CommandURL    string `json:"command_url"`
	ApplicationID string `json:"application_id"`
}

// SetDefaults points at the production endpoints.
func (c *CloudConfig) SetDefaults() {
	if c.AuthURL == "" {
		c.AuthURL = "https://us-central1-ford-connected-car.cloudfunctions.net/api/auth"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://accounts.autonomic.ai/v1/auth/oidc/token"
	}
	if c.TelemetryURL == "" {
		c.TelemetryURL = "https://api.autonomic.ai/v1/telemetry/sources/fordpass/vehicles"
	}
	if c.CommandURL == "" {
		c.CommandURL = "https://api.autonomic.ai/v1/command/vehicles"
	}
	if c.ApplicationID == "" {
		c.ApplicationID = "71A3AD0A-CF46-4CCF-B473-FC7FE5BC4592"
	}
}

// CommandConfig tunes command verification.
type CommandConfig struct {
	// TimeoutSeconds bounds the wait for a command's effect.
	TimeoutSeconds int `json:"timeout_seconds"`
	// PollIntervalSeconds is the sleep between status polls.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	// StatusTTLSeconds is how long a cached snapshot serves property reads
	// before a refresh.
	StatusTTLSeconds int `json:"status_ttl_seconds"`
}

// SetDefaults applies sane defaults.
func (c *CommandConfig) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 2
	}
	if c.StatusTTLSeconds == 0 {
		c.StatusTTLSeconds = 2
	}
}

// Validate checks mandatory fields.
func (c CommandConfig) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	if c.PollIntervalSeconds > c.TimeoutSeconds {
		return fmt.Errorf("poll_interval_seconds exceeds timeout_seconds")
	}
	return nil
}

// Timeout returns the verification timeout as a duration.
func (c CommandConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the poll interval as a duration.
func (c CommandConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// StatusTTL returns the snapshot freshness window as a duration.
func (c CommandConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLSeconds) * time.Second
}

// UnitsConfig selects default rendering units per family.
type UnitsConfig struct {
	Temperature string `json:"temperature"` // "c" or "f"
	Distance    string `json:"distance"`    // "km" or "mi"
	Pressure    string `json:"pressure"`    // "kpa", "psi" or "bar"
	// Duration is "s", "m", "h", "ms" or "human".
	Duration string `json:"duration"`
}

// SetDefaults applies metric defaults.
func (c *UnitsConfig) SetDefaults() {
	if c.Temperature == "" {
		c.Temperature = "c"
	}
	if c.Distance == "" {
		c.Distance = "km"
	}
	if c.Pressure == "" {
		c.Pressure = "kpa"
	}
	if c.Duration == "" {
		c.Duration = "human"
	}
}

var temperatureUnits = map[string]units.Unit{"c": units.Celsius, "f": units.Fahrenheit}
var distanceUnits = map[string]units.Unit{"km": units.Kilometers, "mi": units.Miles}
var pressureUnits = map[string]units.Unit{"kpa": units.Kilopascals, "psi": units.PSI, "bar": units.Bar}
var durationUnits = map[string]units.Unit{"s": units.Seconds, "m": units.Minutes, "h": units.Hours, "ms": units.Milliseconds}

// Validate checks that every unit name is recognized.
func (c UnitsConfig) Validate() error {
	if _, ok := temperatureUnits[c.Temperature]; !ok {
		return fmt.Errorf("unknown temperature unit %q", c.Temperature)
	}
	if _, ok := distanceUnits[c.Distance]; !ok {
		return fmt.Errorf("unknown distance unit %q", c.Distance)
	}
	if _, ok := pressureUnits[c.Pressure]; !ok {
		return fmt.Errorf("unknown pressure unit %q", c.Pressure)
	}
	if c.Duration != "human" {
		if _, ok := durationUnits[c.Duration]; !ok {
			return fmt.Errorf("unknown duration unit %q", c.Duration)
		}
	}
	return nil
}

// Preferences converts the section to rendering preferences.
func (c UnitsConfig) Preferences() units.Preferences {
	p := units.Preferences{
		Temperature: temperatureUnits[c.Temperature],
		Distance:    distanceUnits[c.Distance],
		Pressure:    pressureUnits[c.Pressure],
		Duration:    units.Seconds,
		Potential:   units.Volts,
	}
	if c.Duration == "human" {
		p.HumanDuration = true
	} else {
		p.Duration = durationUnits[c.Duration]
	}
	return p
}
