package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"weasel/internal/config"
	"weasel/internal/evo"
	"weasel/internal/logging"
	"weasel/internal/metrics"
	"weasel/pkg/weasel"
)

// fractionValue lets a Fraction be set from the command line.
type fractionValue struct {
	f evo.Fraction
}

func (v *fractionValue) String() string { return v.f.String() }

func (v *fractionValue) Set(s string) error {
	f, err := evo.ParseFraction(s)
	if err != nil {
		return err
	}
	v.f = f
	return nil
}

func (v *fractionValue) Type() string { return "fraction" }

// runFlags are shared by run and benchmark.
type runFlags struct {
	configPath     string
	offspring      int
	alphabet       string
	maxGenerations int
	mutationRate   fractionValue
	fitness        string
	seed           int64
	storeKind      string
	dbPath         string
	artifactsDir   string
	metricsFile    string
	logLevel       string
}

func (f *runFlags) bind(fs *pflag.FlagSet) {
	defaults := config.DefaultConfig()
	f.mutationRate.f = evo.MustFraction(defaults.MutationRate)

	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.IntVarP(&f.offspring, "offspring", "o", defaults.Offspring, "offspring bred per generation")
	fs.StringVarP(&f.alphabet, "alphabet", "a", defaults.Alphabet, "symbols a mutation can produce")
	fs.IntVarP(&f.maxGenerations, "max-generations", "M", 0, "stop after this many bred generations (no cap unless set)")
	fs.VarP(&f.mutationRate, "mutation-rate", "m", "chance of mutating each symbol, in [0, 1]")
	fs.StringVar(&f.fitness, "fitness", defaults.Fitness, fmt.Sprintf("fitness strategy: %v", evo.ListFitness()))
	fs.Int64Var(&f.seed, "seed", 0, "random seed (0 seeds from the clock)")
	fs.StringVar(&f.storeKind, "store", defaults.Store.Kind, "store backend: memory|sqlite")
	fs.StringVar(&f.dbPath, "db-path", defaults.Store.DBPath, "sqlite database path")
	fs.StringVar(&f.artifactsDir, "artifacts-dir", defaults.ArtifactsDir, "directory for run artifacts and the run index")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the run ends")
	fs.StringVar(&f.logLevel, "log-level", defaults.Logging.Level, "log level: debug|info|warn|error")
}

// resolve layers the config file, WEASEL_* environment and explicitly set
// flags, in that order.
func (f *runFlags) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	if fs.Changed("offspring") {
		cfg.Offspring = f.offspring
	}
	if fs.Changed("alphabet") {
		cfg.Alphabet = f.alphabet
	}
	if fs.Changed("max-generations") {
		limit := f.maxGenerations
		cfg.MaxGenerations = &limit
	}
	if fs.Changed("mutation-rate") {
		cfg.MutationRate = f.mutationRate.f.Value()
	}
	if fs.Changed("fitness") {
		cfg.Fitness = f.fitness
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("store") {
		cfg.Store.Kind = f.storeKind
	}
	if fs.Changed("db-path") {
		cfg.Store.DBPath = f.dbPath
	}
	if fs.Changed("artifacts-dir") {
		cfg.ArtifactsDir = f.artifactsDir
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if len(args) > 0 {
		cfg.Target = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is a client built from a resolved config.
type session struct {
	client  *weasel.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
	cfg     *config.Config
}

func openSession(cfg *config.Config) (*session, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	client, err := weasel.New(weasel.Options{
		StoreKind:    cfg.Store.Kind,
		DBPath:       cfg.Store.DBPath,
		ArtifactsDir: cfg.ArtifactsDir,
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &session{client: client, logger: logger, metrics: m, cfg: cfg}, nil
}

func (s *session) runRequest() (weasel.RunRequest, error) {
	rate, err := s.cfg.Fraction()
	if err != nil {
		return weasel.RunRequest{}, err
	}
	return weasel.RunRequest{
		Target:         s.cfg.Target,
		Alphabet:       s.cfg.Alphabet,
		Offspring:      s.cfg.Offspring,
		MutationRate:   &rate,
		Fitness:        s.cfg.Fitness,
		MaxGenerations: s.cfg.MaxGenerations,
		Seed:           s.cfg.Seed,
	}, nil
}

// close writes the metrics file, if one is configured, and releases the
// store.
func (s *session) close() error {
	var err error
	if s.cfg.MetricsFile != "" {
		if werr := s.metrics.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			err = fmt.Errorf("write metrics: %w", werr)
		}
	}
	if cerr := s.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	_ = s.logger.Sync()
	return err
}
