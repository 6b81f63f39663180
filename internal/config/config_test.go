package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Lattice.N != 28 {
		t.Errorf("lattice n = %d, want 28", cfg.Lattice.N)
	}
	if cfg.Clock.StepSeconds != 0.004 {
		t.Errorf("step = %v, want 0.004", cfg.Clock.StepSeconds)
	}
	if cfg.Clock.AnalysisInterval != 4 {
		t.Errorf("analysis interval = %d, want 4", cfg.Clock.AnalysisInterval)
	}
	if cfg.Field.HiggsVEV != 0.8 {
		t.Errorf("vev = %v, want 0.8", cfg.Field.HiggsVEV)
	}
	if cfg.Particles.Capacity != 300 {
		t.Errorf("capacity = %d, want 300", cfg.Particles.Capacity)
	}
	if cfg.Shape.Enabled {
		t.Error("shape coupling enabled by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 77
	cfg.Preset = "bigbang"
	cfg.Field.YukawaCoupling = 0.55
	cfg.Particles.InjectionRate = 8.5
	cfg.Shape.MeshPath = "heart.stl"

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	// a partial file keeps defaults for everything it omits
	path := filepath.Join(t.TempDir(), "partial.yaml")
	body := "preset: higgs\nparticles:\n  injection_rate: 12\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preset != "higgs" {
		t.Errorf("preset = %q, want higgs", cfg.Preset)
	}
	if cfg.Particles.InjectionRate != 12 {
		t.Errorf("injection rate = %v, want 12", cfg.Particles.InjectionRate)
	}
	if cfg.Lattice.N != DefaultLatticeN {
		t.Errorf("omitted lattice n = %d, want default %d", cfg.Lattice.N, DefaultLatticeN)
	}
	if cfg.Particles.Capacity != DefaultCapacity {
		t.Errorf("omitted capacity = %d, want default %d", cfg.Particles.Capacity, DefaultCapacity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("lattice: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Field.HiggsVEV = 2.0
	if cfg.Field.HiggsVEV == 2.0 {
		t.Fatal("Clone shares state with the original")
	}
}

func TestPresetsAreRegistered(t *testing.T) {
	names := ListPresets()
	if len(names) != 5 {
		t.Fatalf("preset count = %d, want 5", len(names))
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %q not constructible", name)
		}
		if cfg.Preset != name {
			t.Errorf("preset %q builds config labeled %q", name, cfg.Preset)
		}
	}
	if GetPreset("nope") != nil {
		t.Error("unknown preset should return nil")
	}
}
