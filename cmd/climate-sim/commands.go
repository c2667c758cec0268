package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"climate-dashboard/internal/cache"
	"climate-dashboard/internal/casestudy"
	"climate-dashboard/internal/config"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/repository"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

const version = "1.0.0"

// cli holds what every subcommand needs once the root command has loaded
// configuration
type cli struct {
	out        io.Writer
	configPath string
	archive    bool

	logger  *logging.StructuredLogger
	sim     *services.SimulationService
	cases   *services.CaseStudyService
	runs    *services.ArchiveService
	closeDB func() error
}

// newRootCommand builds the command tree. The returned func releases the
// logger and archive connection and must run after Execute.
func newRootCommand(out io.Writer) (*cobra.Command, func() error) {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "climate-sim",
		Short:         "Generate synthetic climate dashboard data as JSON",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv(config.EnvConfigPath), "path to config file")
	root.PersistentFlags().BoolVar(&c.archive, "archive", false, "store generated results in the PostgreSQL run archive")

	root.AddCommand(
		c.seriesCommand(),
		c.fieldCommand(),
		c.gridCommand(),
		c.caseStudyCommand(),
		c.regionsCommand(),
	)

	return root, c.teardown
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// stdout carries the JSON result
	c.logger = logging.NewStructuredLogger("climate-sim", version, logging.ParseLevel(cfg.Logging.Level))
	c.logger.SetOutput(cmd.ErrOrStderr())

	// Metrics are collected but not exported from a one-shot command
	collector := metrics.NewCollector("climate_sim", prometheus.NewRegistry())

	c.sim = services.NewSimulationService(
		services.OptionsFromConfig(cfg.Simulation),
		cache.New(cfg.Simulation.CacheSize),
		c.logger,
		collector,
	)
	c.cases = services.NewCaseStudyService(casestudy.Default(), c.logger, collector)

	if c.archive {
		db, err := database.NewPostgresDB(cfg.Database.Connection(), c.logger, collector)
		if err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		c.closeDB = db.Close
		c.runs = services.NewArchiveService(repository.NewRunRepository(db, c.logger), c.sim, nil, c.logger, collector)
	}

	return nil
}

func (c *cli) teardown() error {
	if c.logger != nil {
		// Syncing a terminal returns EINVAL on some platforms
		_ = c.logger.Sync()
	}
	if c.closeDB != nil {
		return c.closeDB()
	}
	return nil
}

func (c *cli) print(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit archives the request when --archive is set and prints the run,
// otherwise it prints the generated result
func (c *cli) emit(cmd *cobra.Command, req services.ArchiveRequest, generate func() (interface{}, error)) error {
	if c.runs != nil {
		run, err := c.runs.Archive(cmd.Context(), req)
		if err != nil {
			return err
		}
		return c.print(run)
	}

	result, err := generate()
	if err != nil {
		return err
	}
	return c.print(result)
}

func seedFlag(cmd *cobra.Command) *int64 {
	return int64Flag(cmd, "seed")
}

func int64Flag(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func (c *cli) seriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Yearly sea level rise series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := services.SeriesRequest{Seed: seedFlag(cmd), UntilYear: intFlag(cmd, "until")}

			return c.emit(cmd, services.ArchiveRequest{
				Kind:      models.SeriesRun,
				Seed:      req.Seed,
				UntilYear: req.UntilYear,
			}, func() (interface{}, error) {
				return c.sim.SeaLevel(cmd.Context(), req)
			})
		},
	}
	cmd.Flags().Int64("seed", 0, "generator seed (random when omitted)")
	cmd.Flags().Int("until", models.MaxYear, "last year to include")
	return cmd
}

func (c *cli) fieldCommand() *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Temperature anomaly points for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			req := services.FieldRequest{Year: year, Seed: seedFlag(cmd)}
			if policy != "" {
				p, err := models.ParseFieldPolicy(policy)
				if err != nil {
					return err
				}
				req.Policy = &p
			}

			return c.emit(cmd, services.ArchiveRequest{
				Kind:   models.FieldRun,
				Seed:   req.Seed,
				Year:   &req.Year,
				Policy: req.Policy,
			}, func() (interface{}, error) {
				return c.sim.AnomalyField(cmd.Context(), req)
			})
		},
	}
	cmd.Flags().Int64("seed", 0, "generator seed (random when omitted)")
	cmd.Flags().Int("year", 0, fmt.Sprintf("selected year (%d-%d)", models.MinYear, models.MaxYear))
	cmd.Flags().StringVar(&policy, "policy", "", "density or magnitude (config default when omitted)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (c *cli) gridCommand() *cobra.Command {
	var hemisphere string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Latitude dependent anomaly grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := models.ParseHemisphere(hemisphere)
			if err != nil {
				return err
			}
			req := services.GridRequest{Hemisphere: h, Seed: seedFlag(cmd)}
			if cmd.Flags().Changed("scale") {
				scale, _ := cmd.Flags().GetFloat64("scale")
				req.Scale = &scale
			}

			return c.emit(cmd, services.ArchiveRequest{
				Kind:       models.GridRun,
				Seed:       req.Seed,
				Hemisphere: &h,
				Scale:      req.Scale,
			}, func() (interface{}, error) {
				return c.sim.AnomalyGrid(cmd.Context(), req)
			})
		},
	}
	cmd.Flags().Int64("seed", 0, "generator seed (random when omitted)")
	cmd.Flags().StringVar(&hemisphere, "hemisphere", string(models.Global), "global, north or south")
	cmd.Flags().Float64("scale", 4, "map scale between 1 and 6")
	return cmd
}

func (c *cli) caseStudyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "case-study <region>",
		Short: "Print the case study for one region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := c.cases.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(entry)
		},
	}
}

func (c *cli) regionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List regions with a case study",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.print(c.cases.Regions(cmd.Context()))
		},
	}
}
