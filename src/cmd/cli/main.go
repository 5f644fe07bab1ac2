package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pack-manager/src/config"
	"pack-manager/src/geo"
	"pack-manager/src/mapview"
	"pack-manager/src/marker"
)

type cliOptions struct {
	configPath  string
	envPath     string
	position    string
	destination string
	outPath     string
	jsonOutput  bool
	verbose     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdout)
}

func runWithArgs(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"pm-map"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pm-map",
		Short:         "Place markers on the pack map without the window and print or save the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to .env file")
	cmd.Flags().StringVar(&opts.position, "position", "", "Current position in world coordinates, e.g. \"12.5,-3\"")
	cmd.Flags().StringVar(&opts.destination, "destination", "", "Next destination in world coordinates")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write the annotated map as PNG (use '-' for stdout)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

type MarkerResult struct {
	World  string  `json:"world"`
	PixelX float64 `json:"pixel_x"`
	PixelY float64 `json:"pixel_y"`
	OnMap  bool    `json:"on_map"`
	Handle uint64  `json:"handle"`
}

type MapResult struct {
	Map         string        `json:"map"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Position    *MarkerResult `json:"position,omitempty"`
	Destination *MarkerResult `json:"destination,omitempty"`
	Connector   bool          `json:"connector"`
	Snapshot    string        `json:"snapshot,omitempty"`
}

func runWithOptions(opts cliOptions, stdout io.Writer) error {
	if opts.position == "" && opts.destination == "" {
		return fmt.Errorf("nothing to place: pass --position and/or --destination")
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigPathOverride: opts.configPath,
		EnvPathOverride:    opts.envPath,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Config loaded from %s, map %s\n", cfg.ConfigPath, cfg.MapImage)
	}

	surface, err := mapview.Load(cfg.MapImage, cfg.MapScale)
	if err != nil {
		return err
	}
	w, h := surface.Size()
	tr, err := geo.NewTransform(cfg.Extents, float64(w), float64(h))
	if err != nil {
		return err
	}
	state := marker.New(tr, surface)

	if opts.position != "" {
		pos, err := geo.Parse(opts.position)
		if err != nil {
			return err
		}
		state.SetPosition(pos)
	}
	if opts.destination != "" {
		dest, err := geo.Parse(opts.destination)
		if err != nil {
			return err
		}
		state.SetDestinationFromSurfacePoint(tr.ToSurface(dest))
	}

	result := MapResult{Map: cfg.MapImage, Width: w, Height: h}
	if m, ok := state.Position(); ok {
		result.Position = describeMarker(m, tr, w, h)
	}
	if m, ok := state.Destination(); ok {
		result.Destination = describeMarker(m, tr, w, h)
	}
	_, result.Connector = state.Connector()

	if opts.outPath != "" {
		png, err := surface.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to render map: %w", err)
		}
		if opts.outPath == "-" {
			_, err = stdout.Write(png)
			return err
		}
		if err := os.WriteFile(opts.outPath, png, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.outPath, err)
		}
		result.Snapshot = opts.outPath
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Wrote %d bytes to %s\n", len(png), opts.outPath)
		}
	}

	return outputResult(result, opts.jsonOutput, stdout)
}

func describeMarker(m marker.Marker, tr *geo.Transform, w, h int) *MarkerResult {
	p := tr.ToSurface(m.Coord)
	return &MarkerResult{
		World:  geo.Format(m.Coord),
		PixelX: p.X,
		PixelY: p.Y,
		OnMap:  p.X >= 0 && p.Y >= 0 && p.X < float64(w) && p.Y < float64(h),
		Handle: uint64(m.Handle),
	}
}

func outputResult(r MapResult, jsonOutput bool, stdout io.Writer) error {
	if jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	fmt.Fprintf(stdout, "map %s (%dx%d)\n", r.Map, r.Width, r.Height)
	for _, row := range []struct {
		label string
		m     *MarkerResult
	}{{"position", r.Position}, {"destination", r.Destination}} {
		if row.m == nil {
			continue
		}
		note := ""
		if !row.m.OnMap {
			note = " (off map)"
		}
		fmt.Fprintf(stdout, "%-12s %s -> pixel %.1f,%.1f%s\n", row.label, row.m.World, row.m.PixelX, row.m.PixelY, note)
	}
	if r.Snapshot != "" {
		fmt.Fprintf(stdout, "snapshot     %s\n", r.Snapshot)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"config", "env", "position", "destination", "out", "json", "verbose"} {
			single := "-" + name
			switch {
			case arg == single:
				normalized[i] = "-" + single
			case strings.HasPrefix(arg, single+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
