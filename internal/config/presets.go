package config

// Presets maps preset names to full configurations. Each entry starts from
// the defaults and tunes the knobs that give the preset its character; the
// field initial conditions themselves live with the field package.
var Presets = map[string]func() *Config{
	"loop": func() *Config {
		return DefaultConfig()
	},
	"bigbang": func() *Config {
		c := DefaultConfig()
		c.Preset = "bigbang"
		c.Field.SpeedMultiplier = 1.4
		c.Particles.InjectionRate = 6.0
		return c
	},
	"higgs": func() *Config {
		c := DefaultConfig()
		c.Preset = "higgs"
		c.Particles.InjectionRate = 1.0
		c.Analysis.GrowthRate = 0.5
		return c
	},
	"consciousness": func() *Config {
		c := DefaultConfig()
		c.Preset = "consciousness"
		c.Analysis.Threshold = 0.7
		c.Analysis.PhiSmoothing = 0.25
		return c
	},
	"antimatter": func() *Config {
		c := DefaultConfig()
		c.Preset = "antimatter"
		c.Particles.InjectionRate = 8.0
		c.Particles.AnnihilationRadius = 2.0
		return c
	},
}

func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	return []string{"loop", "bigbang", "higgs", "consciousness", "antimatter"}
}
