package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLatticeN     = 28
	DefaultCellSize     = 1.0
	DefaultStepSeconds  = 0.004
	DefaultMaxSubSteps  = 4
	DefaultAnalysisEach = 4
	DefaultCapacity     = 300
	DefaultEventRing    = 20
	DefaultInjection    = 3.0
	DefaultVEV          = 0.8
)

type Config struct {
	Seed   int64  `yaml:"seed"`
	Preset string `yaml:"preset"`

	Lattice   LatticeConfig   `yaml:"lattice"`
	Clock     ClockConfig     `yaml:"clock"`
	Field     FieldConfig     `yaml:"field"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Particles ParticlesConfig `yaml:"particles"`
	Shape     ShapeConfig     `yaml:"shape"`
}

type LatticeConfig struct {
	N        int     `yaml:"n"`
	CellSize float64 `yaml:"cell_size"`
}

type ClockConfig struct {
	StepSeconds      float64 `yaml:"step_seconds"`
	MaxSubSteps      int     `yaml:"max_sub_steps"`
	AnalysisInterval int     `yaml:"analysis_interval"`
}

type FieldConfig struct {
	SpeedMultiplier   float64 `yaml:"speed_multiplier"`
	HiggsVEV          float64 `yaml:"higgs_vev"`
	HiggsDiffusion    float64 `yaml:"higgs_diffusion"`
	HiggsRestore      float64 `yaml:"higgs_restore"`
	HiggsBackReaction float64 `yaml:"higgs_back_reaction"`
	ElectronDiffusion float64 `yaml:"electron_diffusion"`
	ElectronMass      float64 `yaml:"electron_mass"`
	YukawaCoupling    float64 `yaml:"yukawa_coupling"`
	PhotonDiffusion   float64 `yaml:"photon_diffusion"`
	PhotonDamping     float64 `yaml:"photon_damping"`
	PhotonDrive       float64 `yaml:"photon_drive"`
	HeartStrength     float64 `yaml:"heart_strength"`
}

type AnalysisConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Threshold    float64 `yaml:"threshold"`
	GrowthRate   float64 `yaml:"growth_rate"`
	PhiSmoothing float64 `yaml:"phi_smoothing"`
}

type ParticlesConfig struct {
	Capacity           int     `yaml:"capacity"`
	EventCapacity      int     `yaml:"event_capacity"`
	InjectionRate      float64 `yaml:"injection_rate"` // particle pairs per second
	GradientPull       float64 `yaml:"gradient_pull"`
	Drag               float64 `yaml:"drag"`
	AnnihilationRadius float64 `yaml:"annihilation_radius"`
	CoherenceBoost     float64 `yaml:"coherence_boost"`
}

type ShapeConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Fuzziness   float64 `yaml:"fuzziness"` // world units
	Scale       float64 `yaml:"scale"`
	MaskDamping float64 `yaml:"mask_damping"`
	MeshPath    string  `yaml:"mesh_path"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset: "loop",
		Lattice: LatticeConfig{
			N:        DefaultLatticeN,
			CellSize: DefaultCellSize,
		},
		Clock: ClockConfig{
			StepSeconds:      DefaultStepSeconds,
			MaxSubSteps:      DefaultMaxSubSteps,
			AnalysisInterval: DefaultAnalysisEach,
		},
		Field: FieldConfig{
			SpeedMultiplier:   1.0,
			HiggsVEV:          DefaultVEV,
			HiggsDiffusion:    0.35,
			HiggsRestore:      1.2,
			HiggsBackReaction: 0.15,
			ElectronDiffusion: 0.45,
			ElectronMass:      0.12,
			YukawaCoupling:    0.3,
			PhotonDiffusion:   0.6,
			PhotonDamping:     0.02,
			PhotonDrive:       0.25,
			HeartStrength:     0,
		},
		Analysis: AnalysisConfig{
			Enabled:      true,
			Threshold:    0.85,
			GrowthRate:   0.9,
			PhiSmoothing: 0.15,
		},
		Particles: ParticlesConfig{
			Capacity:           DefaultCapacity,
			EventCapacity:      DefaultEventRing,
			InjectionRate:      DefaultInjection,
			GradientPull:       0.8,
			Drag:               0.99,
			AnnihilationRadius: 1.5,
			CoherenceBoost:     0.4,
		},
		Shape: ShapeConfig{
			Enabled:     false,
			Fuzziness:   1.5,
			Scale:       1.0,
			MaskDamping: 0.15,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy; the config has no reference fields beyond
// strings, so a value copy suffices.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
