// commands.go: cobra commands and the wiring of one run
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lavelinevgeny/mediasort/internal/archive"
	"github.com/lavelinevgeny/mediasort/internal/config"
	"github.com/lavelinevgeny/mediasort/internal/logging"
	"github.com/lavelinevgeny/mediasort/internal/media"
	"github.com/lavelinevgeny/mediasort/internal/metadata"
	"github.com/lavelinevgeny/mediasort/internal/organizer"
	"github.com/lavelinevgeny/mediasort/internal/timestamp"
)

var (
	flagConfig  string
	flagLog     bool
	flagTZ      string
	flagWorkers int
	flagYes     bool
)

var rootCmd = &cobra.Command{
	Use:          "mediasort",
	Short:        "Sort photos and videos into a YYYY-MM/DD archive by capture time",
	Version:      version,
	SilenceUsage: true,
}

// env is what every command needs once flags and config are resolved.
type env struct {
	cfg      *config.Config
	cfgPath  string
	zone     *time.Location
	log      *slog.Logger
	closeLog io.Closer
}

func (e *env) Close() {
	if e.closeLog != nil {
		_ = e.closeLog.Close()
	}
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path, explicit := paths.ConfigPath, paths.ConfigFromEnv
	if flagConfig != "" {
		path, explicit = flagConfig, true
	}

	cfg, err := config.Load(path, explicit, config.Defaults(paths.StateDir))
	if err != nil {
		return nil, path, fmt.Errorf("reading config: %w", err)
	}
	if f := cmd.Flags().Lookup("tz"); f != nil && f.Changed {
		cfg.ReferenceTimezone = flagTZ
	}
	if f := cmd.Flags().Lookup("workers"); f != nil && f.Changed {
		cfg.Workers = flagWorkers
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	zone, err := timestamp.LoadZone(cfg.ReferenceTimezone)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	log, closer, err := logging.Open(cfg.LogDir, logging.NewRunID(), level, flagLog)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	return &env{cfg: cfg, cfgPath: path, zone: zone, log: log, closeLog: closer}, nil
}

// newCollector wires every metadata backend. The caller closes the returned
// exiftool process.
func (e *env) newCollector() (*metadata.Collector, *metadata.Exiftool) {
	norm := timestamp.NewNormalizer(e.zone,
		timestamp.WithFutureWindow(e.cfg.FutureWindow()),
		timestamp.WithLenientOffsets(e.cfg.LenientOffsets),
		timestamp.WithLogger(e.log),
	)
	et := metadata.NewExiftool(e.cfg.ExiftoolPath)
	c := metadata.NewCollector(norm, metadata.Backends{
		Images: metadata.ExifReader{},
		Tags:   et,
		Probes: []metadata.ContainerProber{
			metadata.FFprobe{Binary: e.cfg.FFprobePath, Timeout: e.cfg.FileTimeout.Duration},
			metadata.MP4Boxes{},
		},
		Files: metadata.StatTimes{},
	}, e.log)
	return c, et
}

var organizeCmd = &cobra.Command{
	Use:   "organize SOURCE TARGET",
	Short: "Move media from SOURCE into the dated archive at TARGET",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		src, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		dst, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		if info, err := os.Stat(src); err != nil || !info.IsDir() {
			return fmt.Errorf("source %s is not a directory", src)
		}
		if err := checkTargetDirectory(dst); err != nil {
			return err
		}

		e.log.Info("mediasort started", "version", version, "command", strings.Join(os.Args, " "),
			"source", src, "target", dst, "timezone", e.zone.String(), "config", e.cfgPath)

		var exclude []string
		if media.Within(dst, src) {
			exclude = append(exclude, dst)
		}
		census, err := media.Count(src, exclude)
		if err != nil {
			return fmt.Errorf("counting files: %w", err)
		}
		if !confirm(os.Stdin, cmd.OutOrStdout(), census, flagYes, stdinIsTerminal()) {
			return nil
		}

		unlock, err := lockTarget(e.cfg.LogDir, dst)
		if err != nil {
			return err
		}
		defer unlock()

		collector, et := e.newCollector()
		defer et.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		progress := newProgress(e.log, e.cfg.ProgressEvery)
		org := organizer.New(collector, dst, organizer.Options{
			Workers:       e.cfg.Workers,
			ProgressEvery: progress.every(),
			OnStart:       progress.start,
			OnProgress:    progress.update,
		}, e.log)

		started := time.Now()
		sum, err := org.Run(ctx, src)
		progress.finish()
		if err != nil {
			e.log.Error("run failed", "error", err)
			return err
		}

		logging.Notice(e.log, "done",
			"processed", sum.Processed, "moved", sum.Moved, "duplicates", sum.Duplicates,
			"skipped", sum.Skipped, "failed", sum.Failed, "elapsed", time.Since(started).Round(time.Millisecond))
		printSummary(cmd.OutOrStdout(), sum)
		if ctx.Err() != nil {
			return errors.New("interrupted")
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE...",
	Short: "Show the capture time candidates of files without moving them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		collector, et := e.newCollector()
		defer et.Close()

		out := cmd.OutOrStdout()
		for _, path := range args {
			res, err := collector.Collect(cmd.Context(), path)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			printResolution(out, path, res)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		path := paths.ConfigPath
		if flagConfig != "" {
			path = flagConfig
		}
		if err := config.Init(path, config.Defaults(paths.StateDir)); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", path)
		m := &config.Manager{}
		return m.Write(out, cfg)
	},
}

// lockTarget takes a per-target lock file in stateDir so that two runs never
// race for names in the same archive.
func lockTarget(stateDir, target string) (func(), error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	key := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(target))).String()[:8]
	path := filepath.Join(stateDir, "organize-"+key+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another mediasort run is organizing into %s (lock %s)", target, path)
	}
	return func() { _ = lock.Unlock() }, nil
}

func printSummary(w io.Writer, s organizer.Summary) {
	fmt.Fprintf(w, "Processed:  %d\n", s.Processed)
	fmt.Fprintf(w, "Moved:      %d\n", s.Moved)
	fmt.Fprintf(w, "Duplicates: %d\n", s.Duplicates)
	fmt.Fprintf(w, "Skipped:    %d\n", s.Skipped)
	fmt.Fprintf(w, "Failed:     %d\n", s.Failed)
}

func printResolution(w io.Writer, path string, res *metadata.Result) {
	fmt.Fprintf(w, "%s\n", path)
	for _, c := range res.Candidates.Sorted() {
		fmt.Fprintf(w, "  %s  %s %s\n", c.Time, c.Backend, c.Field)
	}
	cand, ok := res.Resolved()
	if !ok {
		fmt.Fprintln(w, "  no date, would be skipped")
		return
	}
	loc, err := archive.Plan("", cand.Time)
	if err != nil {
		fmt.Fprintf(w, "  %v\n", err)
		return
	}
	source := "metadata"
	if !res.FromMetadata {
		source = "file times"
	}
	fmt.Fprintf(w, "  -> %s (%s)\n", filepath.ToSlash(loc.Path(0, media.Ext(path))), source)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/mediasort.toml or $MEDIASORT_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&flagLog, "log", false, "append a detailed log to mediasort.log in the log directory")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "", "reference timezone (default from config, Asia/Tokyo)")

	organizeCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "number of workers (0 = sized from CPU count)")
	organizeCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask for confirmation")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(configCmd)
}
