package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tobik/skua/internal/config"
	"github.com/tobik/skua/internal/dimacs"
	"github.com/tobik/skua/sat"
)

var (
	flagConfig     string
	flagGzip       bool
	flagVerbose    bool
	flagCPUProfile bool
	flagMemProfile bool
)

func newRootCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skua [flags] <instance.cnf> [<instance.cnf> ...]",
		Short: "A conflict-driven clause learning SAT solver",
		Long: "skua decides the satisfiability of CNF instances in the DIMACS " +
			"format. Each instance is solved independently and reported with " +
			"an \"s SATISFIABLE\" or \"s UNSATISFIABLE\" line on stdout; the " +
			"model of a satisfiable instance is written to the model file.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(log, args)
		},
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&flagGzip, "gzip", false, "treat the instance files as gzip-compressed")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable trace logging")
	cmd.Flags().BoolVar(&flagCPUProfile, "cpuprof", false, "save pprof CPU profile in cpuprof")
	cmd.Flags().BoolVar(&flagMemProfile, "memprof", false, "save pprof memory profile in memprof")
	return cmd
}

func run(log *logrus.Logger, args []string) error {
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
	}

	if len(args) == 0 {
		fmt.Println("UNKNOWN")
		return nil
	}

	if flagCPUProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, path := range args {
		if err := solveInstance(log, cfg, path); err != nil {
			log.WithField("instance", path).Error(err)
		}
	}

	if flagMemProfile {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
	return nil
}

func solveInstance(log *logrus.Logger, cfg config.Config, path string) error {
	instance, err := dimacs.ParseFile(path, flagGzip)
	if err != nil {
		return fmt.Errorf("could not parse instance: %s", err)
	}

	opts := cfg.SolverOptions()
	opts.Logger = log
	s := sat.NewSolver(opts)
	for i := 0; i < instance.Variables; i++ {
		s.AddVariable()
	}
	for _, clause := range instance.Clauses {
		if err := s.AddClause(clause); err != nil {
			return fmt.Errorf("could not load instance: %s", err)
		}
	}

	fmt.Printf("c instance:   %s\n", path)
	fmt.Printf("c variables:  %d\n", instance.Variables)
	fmt.Printf("c clauses:    %d\n", len(instance.Clauses))

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	stats := s.Stats()
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", stats.Conflicts, float64(stats.Conflicts)/elapsed.Seconds())
	fmt.Printf("c restarts:   %d\n", stats.Restarts)
	fmt.Printf("c learnts:    %d (avg lbd %.2f)\n", stats.Learnts, stats.AvgLBD)

	switch status {
	case sat.True:
		fmt.Println("s SATISFIABLE")
		if err := dimacs.WriteModel(cfg.ModelFile, s.Model()); err != nil {
			return err
		}
	case sat.False:
		fmt.Println("s UNSATISFIABLE")
	default:
		fmt.Println("s UNKNOWN")
	}
	return nil
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if err := newRootCmd(log).Execute(); err != nil {
		log.Error(err)
	}
	// The result of each instance is conveyed on stdout; the process exit
	// code is always 0.
}
