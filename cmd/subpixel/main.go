// Command subpixel refines the local extrema of a grid to sub-sample
// precision, or follows a displacement field to its fixed point.
//
//	subpixel -input image.json -method gaussian -png peaks.png
//	subpixel -input image.json -at "12,7;30,4" -workers 4
//	subpixel -input image.json -candidates seeds.json -mask roi.json
//	subpixel -input shift.json -track 6.2,13.1 -epsilon 1e-4
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/subpixel/internal/config"
	"github.com/banshee-data/subpixel/internal/db"
	"github.com/banshee-data/subpixel/internal/grid"
	"github.com/banshee-data/subpixel/internal/monitoring"
	"github.com/banshee-data/subpixel/internal/report"
	"github.com/banshee-data/subpixel/internal/subpixel"
	"github.com/banshee-data/subpixel/internal/version"
)

// Config holds the command-line settings.
type Config struct {
	Input      string
	Mask       string
	ConfigFile string
	At         string
	Candidates string
	Track      string
	DBPath     string
	PNGPath    string
	HTMLPath   string
	JSONPath   string
	Verbose    bool

	// Set only when given on the command line; they override ConfigFile.
	Method        *string
	Polarity      *string
	Workers       *int
	Epsilon       *float64
	MaxIterations *int
}

// Output is the JSON document written for each run.
type Output struct {
	RunID     string                    `json:"run_id,omitempty"`
	Mode      string                    `json:"mode"`
	Method    string                    `json:"method,omitempty"`
	Polarity  string                    `json:"polarity,omitempty"`
	Sizes     []int                     `json:"sizes"`
	Locations []subpixel.Location       `json:"locations,omitempty"`
	Track     *subpixel.MeanShiftResult `json:"track,omitempty"`
	Converged *bool                     `json:"converged,omitempty"`
}

func main() {
	cfg, showVersion := parseFlags(os.Args[1:])
	if showVersion {
		fmt.Println(version.String())
		return
	}
	if cfg.Input == "" {
		log.Fatal("-input is required")
	}
	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("subpixel: %v", err)
	}
}

func parseFlags(args []string) (Config, bool) {
	var cfg Config
	fs := flag.NewFlagSet("subpixel", flag.ExitOnError)
	fs.StringVar(&cfg.Input, "input", "", "grid JSON file ({\"sizes\":[..],\"tensor_elements\":n,\"data\":[..]})")
	fs.StringVar(&cfg.Mask, "mask", "", "optional mask grid JSON file (non-zero = keep)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "locator config JSON (defaults built in)")
	fs.StringVar(&cfg.At, "at", "", "refine only these positions, e.g. \"12,7;30,4\"")
	fs.StringVar(&cfg.Candidates, "candidates", "", "grid JSON whose non-zero samples are the positions to refine (filtered by -mask)")
	fs.StringVar(&cfg.Track, "track", "", "mean-shift start point \"x,y[,z]\"; -input must be a vector field")
	fs.StringVar(&cfg.DBPath, "db", "", "record the run in this SQLite database")
	fs.StringVar(&cfg.PNGPath, "png", "", "write a heat-map PNG of the grid and its extrema")
	fs.StringVar(&cfg.HTMLPath, "html", "", "write an interactive HTML scatter of the grid and its extrema")
	fs.StringVar(&cfg.JSONPath, "json", "", "write the result JSON here instead of stdout")
	fs.BoolVar(&cfg.Verbose, "v", false, "log batch summaries and rejected fits")
	method := fs.String("method", "", "fit method: linear, parabolic separable, gaussian separable, parabolic, gaussian, integer")
	polarity := fs.String("polarity", "", "maximum or minimum")
	workers := fs.Int("workers", 0, "goroutines for -at and -candidates")
	epsilon := fs.Float64("epsilon", 0, "mean-shift step threshold")
	maxIter := fs.Int("max-iter", 0, "mean-shift step cap (0 = unbounded)")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(args)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Method = method
		case "polarity":
			cfg.Polarity = polarity
		case "workers":
			cfg.Workers = workers
		case "epsilon":
			cfg.Epsilon = epsilon
		case "max-iter":
			cfg.MaxIterations = maxIter
		}
	})
	return cfg, *showVersion
}

var errConflictingFlags = errors.New("conflicting flags")

// checkFlags rejects flag combinations where one flag would be ignored.
func (c Config) checkFlags() error {
	switch {
	case c.At != "" && c.Candidates != "":
		return fmt.Errorf("%w: -at and -candidates are exclusive", errConflictingFlags)
	case c.At != "" && c.Mask != "":
		return fmt.Errorf("%w: -mask does not apply to -at positions; use -candidates", errConflictingFlags)
	case c.Track != "" && (c.At != "" || c.Candidates != "" || c.Mask != ""):
		return fmt.Errorf("%w: -track takes no positions or mask", errConflictingFlags)
	case c.Track != "" && (c.PNGPath != "" || c.HTMLPath != ""):
		return fmt.Errorf("%w: -png and -html are not drawn for -track", errConflictingFlags)
	}
	return nil
}

// locatorConfig merges the config file (or defaults) with flag overrides.
func (c Config) locatorConfig() (*config.LocatorConfig, error) {
	lc := config.DefaultLocatorConfig()
	if c.ConfigFile != "" {
		var err error
		if lc, err = config.LoadLocatorConfig(c.ConfigFile); err != nil {
			return nil, err
		}
	}
	if c.Method != nil {
		lc.Method = c.Method
	}
	if c.Polarity != nil {
		lc.Polarity = c.Polarity
	}
	if c.Workers != nil {
		lc.Workers = c.Workers
	}
	if c.Epsilon != nil {
		lc.MeanShiftEpsilon = c.Epsilon
	}
	if c.MaxIterations != nil {
		lc.MeanShiftMaxIterations = c.MaxIterations
	}
	if err := lc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return lc, nil
}

func run(cfg Config, stdout io.Writer) error {
	if err := cfg.checkFlags(); err != nil {
		return err
	}
	lc, err := cfg.locatorConfig()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		w := log.Writer()
		subpixel.SetLogWriters(subpixel.LogWriters{Ops: w, Diag: w, Trace: w})
	} else {
		subpixel.SetLogWriters(subpixel.LogWriters{Ops: log.Writer()})
	}

	g, err := loadGrid(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.PNGPath != "" || cfg.HTMLPath != "" {
		if err := report.CheckDrawable(g); err != nil {
			return fmt.Errorf("cannot draw %s: %w", cfg.Input, err)
		}
	}

	start := time.Now()
	var out *Output
	if cfg.Track != "" {
		out, err = track(cfg, lc, g)
	} else {
		out, err = locate(cfg, lc, g)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	monitoring.Logf("%s on %v finished in %s", out.Mode, out.Sizes, elapsed)

	if cfg.Track == "" {
		if err := writeReports(cfg, lc, g, out.Locations); err != nil {
			return err
		}
	}
	if cfg.DBPath != "" {
		if err := record(cfg, out, elapsed); err != nil {
			return err
		}
	}
	return writeOutput(cfg.JSONPath, stdout, out)
}

func locate(cfg Config, lc *config.LocatorConfig, g *grid.Grid[float64]) (*Output, error) {
	defer monitoring.Stage("locate")()
	out := &Output{
		Mode:     db.ModeLocate,
		Method:   lc.GetMethod().String(),
		Polarity: lc.GetPolarity().String(),
		Sizes:    g.Sizes(),
	}

	var mask *grid.Grid[bool]
	if cfg.Mask != "" {
		var err error
		if mask, err = loadMask(cfg.Mask); err != nil {
			return nil, err
		}
	}

	var err error
	switch {
	case cfg.At != "":
		positions, perr := parsePositions(cfg.At)
		if perr != nil {
			return nil, perr
		}
		out.Locations, err = subpixel.LocateCandidates(g, positions, lc.GetPolarity(), lc.GetMethod(),
			subpixel.WithWorkers(lc.GetWorkers()))
	case cfg.Candidates != "":
		positions, perr := loadCandidates(cfg.Candidates, mask)
		if perr != nil {
			return nil, perr
		}
		out.Locations, err = subpixel.LocateCandidates(g, positions, lc.GetPolarity(), lc.GetMethod(),
			subpixel.WithWorkers(lc.GetWorkers()))
	default:
		out.Locations, err = subpixel.LocateAllExtrema(g, mask, lc.GetMethod(), lc.GetPolarity())
	}
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	return out, nil
}

func track(cfg Config, lc *config.LocatorConfig, field *grid.Grid[float64]) (*Output, error) {
	defer monitoring.Stage("track")()
	startPt, err := parsePoint(cfg.Track)
	if err != nil {
		return nil, err
	}
	res, err := lc.Tracker().Track(field, startPt, lc.GetMeanShiftEpsilon())
	converged := true
	if errors.Is(err, subpixel.ErrNotConverged) {
		converged = false
	} else if err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}
	return &Output{
		Mode:      db.ModeTrack,
		Method:    lc.GetMeanShiftInterpolation().String(),
		Sizes:     field.Sizes(),
		Track:     &res,
		Converged: &converged,
	}, nil
}

func record(cfg Config, out *Output, elapsed time.Duration) error {
	store, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &db.Run{
		Method:     out.Method,
		Polarity:   out.Polarity,
		Input:      cfg.Input,
		Sizes:      out.Sizes,
		DurationNs: elapsed.Nanoseconds(),
	}
	if out.Track != nil {
		err = store.RecordTrack(run, *out.Track)
	} else {
		run.Mode = db.ModeLocate
		err = store.RecordRun(run, out.Locations)
	}
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	out.RunID = run.RunID
	return nil
}

func writeReports(cfg Config, lc *config.LocatorConfig, g *grid.Grid[float64], locs []subpixel.Location) error {
	title := fmt.Sprintf("%s %s", lc.GetMethod(), lc.GetPolarity())
	if cfg.PNGPath != "" {
		if err := writeFile(cfg.PNGPath, func(w io.Writer) error {
			return report.WritePlot(w, g, locs, report.PlotOptions{Title: title, PaletteLevels: lc.GetPlotPaletteLevels()})
		}); err != nil {
			return err
		}
	}
	if cfg.HTMLPath != "" {
		if err := writeFile(cfg.HTMLPath, func(w io.Writer) error {
			return report.WriteHTML(w, g, locs, title)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path string, stdout io.Writer, out *Output) error {
	encode := func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if path == "" {
		return encode(stdout)
	}
	return writeFile(path, encode)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
