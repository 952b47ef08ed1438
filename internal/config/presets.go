package config

import "sort"

type preset struct {
	description string
	apply       func(*Config)
}

var presets = map[string]preset{
	"reference": {
		description: "1 kg, 1000 N/m, 5% damping step response",
		apply:       func(c *Config) {},
	},
	"undamped-free": {
		description: "undamped free vibration from 10 mm",
		apply: func(c *Config) {
			c.SetDampingRatio(0)
			c.Excitation.Kind = "free"
			c.Excitation.X0 = 0.01
			c.Excitation.V0 = 0
		},
	},
	"critical": {
		description: "critically damped impulse response",
		apply: func(c *Config) {
			c.SetDampingRatio(1)
			c.Excitation.Kind = "impulse"
			c.Excitation.Amplitude = 1
			c.Time.Duration = 0.5
		},
	},
	"overdamped": {
		description: "overdamped step response",
		apply: func(c *Config) {
			c.SetDampingRatio(2.5)
			c.Time.Duration = 1
		},
	},
	"isolator": {
		description: "50 kg machine on a 10% damped mount, harmonic drive at 25 Hz",
		apply: func(c *Config) {
			c.System.Mass = 50
			c.System.Stiffness = 2e5
			c.SetDampingRatio(0.1)
			c.Excitation.Kind = "harmonic"
			c.Excitation.Amplitude = 200
			c.Excitation.FrequencyHz = 25
			c.Frequency = FrequencyConfig{Start: 0.5, Stop: 100, Count: 400, Spacing: "log", Unit: "hz"}
			c.LimitMM = 1
		},
	},
	"drop-test": {
		description: "50 g, 11 ms half-sine shock, Q = 10",
		apply: func(c *Config) {
			c.Excitation.Kind = "pulse"
			c.Time.Duration = 0.5
			c.SRS = SRSConfig{Start: 10, Stop: 2000, Count: 100, Q: 10, Tail: 0.3}
		},
	},
	"haversine": {
		description: "30 g, 6 ms versed-sine shock",
		apply: func(c *Config) {
			c.Excitation.Kind = "pulse"
			c.Pulse = PulseConfig{Shape: "versed-sine", AmplitudeG: 30, Duration: 0.006}
			c.Time.Dt = 1e-4
			c.Time.Duration = 0.3
			c.SRS = SRSConfig{Start: 20, Stop: 5000, Count: 120, Zeta: 0.05, Tail: 0.15}
		},
	},
	"sweep": {
		description: "1 to 20 Hz linear chirp through resonance",
		apply: func(c *Config) {
			c.Excitation.Kind = "chirp"
			c.Excitation.Amplitude = 10
			c.Excitation.StartHz = 1
			c.Excitation.EndHz = 20
			c.Time.Duration = 10
		},
	},
}

// GetPreset returns a fresh copy of the named configuration, or nil.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description of a preset.
func Describe(name string) string {
	return presets[name].description
}
