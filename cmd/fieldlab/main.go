package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/lattice"
	"github.com/san-kum/fieldlab/internal/metrics"
	"github.com/san-kum/fieldlab/internal/sim"
	"github.com/san-kum/fieldlab/internal/telemetry"
	"github.com/san-kum/fieldlab/internal/viz"
	"github.com/san-kum/fieldlab/internal/voxel"
)

var (
	configFile    string
	preset        string
	seed          int64
	duration      float64
	outDir        string
	meshFile      string
	injectionRate float64
	heartStrength float64
	fuzziness     float64
	shapeScale    float64
	latticeN      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldlab",
		Short: "coupled-field visualization substrate",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation headless and report metrics",
		RunE:  runHeadless,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset configuration")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().Float64Var(&duration, "time", 10.0, "simulated seconds")
	runCmd.Flags().StringVar(&outDir, "out", "", "telemetry output directory")
	runCmd.Flags().StringVar(&meshFile, "mesh", "", "shape mesh file")
	runCmd.Flags().Float64Var(&injectionRate, "injection-rate", -1, "particle pairs per second")
	runCmd.Flags().Float64Var(&heartStrength, "heart", -1, "heart attractor strength [0,1]")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "preset configuration")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	liveCmd.Flags().StringVar(&meshFile, "mesh", "", "shape mesh file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	voxelizeCmd := &cobra.Command{
		Use:   "voxelize [mesh-file]",
		Short: "voxelize a mesh and report mask statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runVoxelize,
	}
	voxelizeCmd.Flags().Float64Var(&fuzziness, "fuzziness", 1.5, "blur half-width in world units")
	voxelizeCmd.Flags().Float64Var(&shapeScale, "scale", 1.0, "user scale multiplier")
	voxelizeCmd.Flags().IntVar(&latticeN, "n", config.DefaultLatticeN, "lattice edge length")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, voxelizeCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildEngine() (*sim.Engine, *config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, nil, fmt.Errorf("unknown preset %q", preset)
		}
	default:
		cfg = config.DefaultConfig()
	}
	cfg.Seed = seed
	if injectionRate >= 0 {
		cfg.Particles.InjectionRate = injectionRate
	}
	if heartStrength >= 0 {
		cfg.Field.HeartStrength = heartStrength
	}

	engine, err := sim.NewEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	if meshFile != "" {
		data, err := os.ReadFile(meshFile)
		if err != nil {
			return nil, nil, err
		}
		if err := engine.LoadMesh(data); err != nil {
			return nil, nil, err
		}
		engine.SetShapeEnabled(true)
	}
	return engine, cfg, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	energy := metrics.NewFieldEnergy()
	coherence := metrics.NewCoherenceStats()
	flashes := metrics.NewFlashRate()
	load := metrics.NewParticleLoad()
	engine.AddMetric(energy)
	engine.AddMetric(coherence)
	engine.AddMetric(flashes)
	engine.AddMetric(load)

	out, err := telemetry.NewOutputManager(outDir)
	if err != nil {
		return err
	}
	defer out.Close()

	steps := int(duration / cfg.Clock.StepSeconds)
	for i := 0; i < steps; i++ {
		engine.Step()
		out.Record(telemetry.TickRecord{
			Tick:            engine.Tick(),
			Time:            engine.Now(),
			FieldEnergy:     engine.Grid().MeanKineticEnergy(),
			MeanCoherence:   engine.Grid().Coherence.Mean(),
			MeanPhi:         engine.Grid().Phi.Mean(),
			FlashFraction:   engine.Grid().Flash.Mean(),
			ActiveParticles: engine.Pool().ActiveCount(),
		})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "preset\t%s\n", cfg.Preset)
	fmt.Fprintf(w, "ticks\t%d\n", engine.Tick())
	fmt.Fprintf(w, "sim time\t%.2fs\n", engine.Now())
	fmt.Fprintf(w, "%s\t%.6f\n", energy.Name(), energy.Value())
	fmt.Fprintf(w, "%s\t%.4f (σ %.4f)\n", coherence.Name(), coherence.Value(), coherence.StdDev())
	fmt.Fprintf(w, "%s\t%.6f\n", flashes.Name(), flashes.Value())
	fmt.Fprintf(w, "%s\t%.3f\n", load.Name(), load.Value())
	fmt.Fprintf(w, "settled\t%v\n", engine.Done())
	w.Flush()

	if hist := energy.History(); len(hist) > 2 {
		sampled := downsample(hist, 120)
		fmt.Println()
		fmt.Println(asciigraph.Plot(sampled, asciigraph.Height(10), asciigraph.Caption("field kinetic energy")))
	}

	if out != nil {
		return out.WriteSummary(telemetry.RunSummary{
			Preset:    cfg.Preset,
			Seed:      cfg.Seed,
			Timestamp: time.Now(),
			StepDt:    cfg.Clock.StepSeconds,
			Ticks:     engine.Tick(),
			Metrics: map[string]float64{
				energy.Name():    energy.Value(),
				coherence.Name(): coherence.Value(),
				flashes.Name():   flashes.Value(),
				load.Name():      load.Value(),
			},
		})
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	engine, _, err := buildEngine()
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(viz.NewModel(engine)).Run()
	return err
}

func runVoxelize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	lat := lattice.New(latticeN, config.DefaultCellSize)
	vox := voxel.New(lat)
	vox.SetScale(shapeScale)
	vox.SetFuzziness(fuzziness)
	if err := vox.LoadMesh(data); err != nil {
		return err
	}

	var inside, soft int
	for _, v := range vox.Mask() {
		if v >= 0.999 {
			inside++
		} else if v > 0.001 {
			soft++
		}
	}
	total := lat.Cells()

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "triangles\t%d\n", vox.Triangles())
	fmt.Fprintf(w, "lattice\t%d^3 (%d cells)\n", latticeN, total)
	fmt.Fprintf(w, "inside\t%d (%.1f%%)\n", inside, 100*float64(inside)/float64(total))
	fmt.Fprintf(w, "boundary\t%d (%.1f%%)\n", soft, 100*float64(soft)/float64(total))
	return w.Flush()
}

func downsample(data []float64, max int) []float64 {
	if len(data) <= max {
		return data
	}
	out := make([]float64, max)
	for i := range out {
		out[i] = data[i*len(data)/max]
	}
	return out
}
