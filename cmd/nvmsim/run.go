package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/nvmsim/config"
	"github.com/sarchlab/nvmsim/memsys"
	"github.com/sarchlab/nvmsim/monitoring"
	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
	"github.com/sarchlab/nvmsim/trace"
)

var (
	configFlag       string
	traceFlag        string
	cyclesFlag       uint64
	warmupFlag       uint64
	statsDBFlag      string
	monitorPortFlag  int
	enableMonitoring bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace against a configured memory system",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVarP(&configFlag, "config", "c", "",
		"device configuration file (KEY = VALUE)")
	runCmd.Flags().StringVarP(&traceFlag, "trace", "t", "",
		"trace file to replay")
	runCmd.Flags().Uint64Var(&cyclesFlag, "cycles", 0,
		"cycle limit, 0 for unlimited")
	runCmd.Flags().Uint64Var(&warmupFlag, "warmup-cycles", 0,
		"trace entries before this cycle are replayed atomically")
	runCmd.Flags().StringVar(&statsDBFlag, "stats-db", "",
		"record stats into this SQLite database")
	runCmd.Flags().BoolVar(&enableMonitoring, "monitor", false,
		"serve JSON status endpoints while running")
	runCmd.Flags().IntVar(&monitorPortFlag, "monitor-port", 0,
		"port for the monitoring server, 0 for random")

	_ = runCmd.MarkFlagRequired("config")
	_ = runCmd.MarkFlagRequired("trace")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	registry := stats.NewRegistry()
	system := memsys.MakeBuilder().
		WithConfig(cfg).
		WithStatsRegistry(registry).
		Build("nvm")

	traceFile, err := os.Open(traceFlag)
	if err != nil {
		return fmt.Errorf("cannot open trace: %w", err)
	}
	defer traceFile.Close()

	replayer := trace.NewReplayer(system, trace.NewReader(traceFile))
	replayer.SetWarmupCycles(sim.Cycle(warmupFlag))

	var recorder *stats.Recorder
	if statsDBFlag != "" {
		recorder = stats.NewRecorder(statsDBFlag)
	}

	if enableMonitoring {
		monitor := monitoring.NewMonitor().WithPortNumber(monitorPortFlag)
		monitor.RegisterSource(system)
		monitor.RegisterRegistry(registry)
		if _, err := monitor.StartServer(); err != nil {
			return err
		}
	}

	atexit.Register(func() {
		if recorder != nil {
			recorder.RecordAll(registry, uint64(system.CurrentCycle()))
		}
		registry.PrintAll(os.Stdout)
	})

	cycles := replayer.Run(sim.Cycle(cyclesFlag))

	if !replayer.Done() {
		color.Yellow("Cycle limit reached with %d requests outstanding.",
			replayer.Issued()-replayer.Completed())
	}

	fmt.Fprintf(os.Stderr,
		"Simulated %d cycles, %d requests completed.\n",
		cycles, replayer.Completed())

	return nil
}
