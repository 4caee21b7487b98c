package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df07/go-kdtracer/pkg/display"
	"github.com/df07/go-kdtracer/pkg/renderer"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// settings mirrors the config keys of the render command
type settings struct {
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
	Workers  int     `mapstructure:"workers"`
	Samples  int     `mapstructure:"samples"`
	MaxDepth int     `mapstructure:"max_depth"`
	Mode     string  `mapstructure:"mode"`
	Seed     int64   `mapstructure:"seed"`
	Jitter   bool    `mapstructure:"jitter"`
	Gamma    float64 `mapstructure:"gamma"`
	Camera   int     `mapstructure:"camera"`
	Scene    string  `mapstructure:"scene"`
	Output   string  `mapstructure:"output"`
	LogLevel string  `mapstructure:"log_level"`
}

func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var s settings
			if err := v.Unmarshal(&s); err != nil {
				return errors.Wrap(err, "decode settings")
			}
			logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), s, logger, cmd)
		},
	}

	defaults := renderer.DefaultConfig()
	flags := cmd.Flags()
	flags.Int("width", defaults.Width, "image width in pixels")
	flags.Int("height", defaults.Height, "image height in pixels")
	flags.Int("workers", defaults.Workers, "band workers (0 = one per CPU)")
	flags.Int("samples", defaults.SamplesPerAxis, "samples per pixel axis (S for an SxS grid)")
	flags.Int("max-depth", defaults.MaxDepth, "maximum bounces in path mode")
	flags.String("mode", defaults.Mode.String(), "shading mode (path|hitmask)")
	flags.Int64("seed", defaults.Seed, "base random seed")
	flags.Bool("jitter", defaults.Jitter, "jitter samples within their grid cell")
	flags.Float64("gamma", defaults.Gamma, "output gamma (1 disables)")
	flags.Int("camera", defaults.CameraIndex, "camera index (-1 = scene's active camera)")
	flags.String("scene", "default", "demo name or path to a YAML scene")
	flags.StringP("output", "o", "", "output PNG (default output/<scene>/render_<timestamp>.png)")

	for _, key := range []string{"width", "height", "workers", "samples", "mode", "seed", "jitter", "gamma", "camera", "scene", "output"} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	_ = v.BindPFlag("max_depth", flags.Lookup("max-depth"))
	return cmd
}

// rendererConfig converts settings into an engine config
func (s settings) rendererConfig() (renderer.Config, error) {
	mode, err := renderer.ParseShadeMode(s.Mode)
	if err != nil {
		return renderer.Config{}, err
	}
	config := renderer.DefaultConfig()
	config.Width = s.Width
	config.Height = s.Height
	config.Workers = s.Workers
	config.SamplesPerAxis = s.Samples
	config.MaxDepth = s.MaxDepth
	config.Mode = mode
	config.Seed = s.Seed
	config.Jitter = s.Jitter
	config.Gamma = s.Gamma
	config.CameraIndex = s.Camera
	return config, config.Validate()
}

// isDescriptionPath reports whether name looks like a YAML file rather than a
// demo name
func isDescriptionPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// loadScene builds a demo or a YAML description
func loadScene(ctx context.Context, name string, aspectRatio float64) (*scene.Scene, error) {
	var builder *scene.Builder
	if isDescriptionPath(name) {
		desc, err := scene.LoadDescription(name)
		if err != nil {
			return nil, err
		}
		if builder, err = desc.Builder(aspectRatio); err != nil {
			return nil, err
		}
	} else {
		var err error
		if builder, err = scene.NewDemo(name, aspectRatio); err != nil {
			return nil, err
		}
	}
	return builder.Build(ctx)
}

// defaultOutput names the PNG after the scene and the current time
func defaultOutput(sceneName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func runRender(ctx context.Context, s settings, logger zerolog.Logger, cmd *cobra.Command) error {
	config, err := s.rendererConfig()
	if err != nil {
		return err
	}

	buildStart := time.Now()
	world, err := loadScene(ctx, s.Scene, float64(config.Width)/float64(config.Height))
	if err != nil {
		return errors.Wrapf(err, "load scene %q", s.Scene)
	}
	tree := world.TreeStats()
	logger.Info().
		Str("scene", s.Scene).
		Int("shapes", len(world.Shapes)).
		Int("primitives", world.PrimitiveCount()).
		Int("tree_nodes", tree.Nodes).
		Int("tree_depth", tree.MaxDepth).
		Dur("elapsed", time.Since(buildStart)).
		Msg("scene built")

	engine, err := renderer.NewEngine(world, config, renderer.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn().Err(err).Msg("engine close")
		}
	}()

	bitmap, err := engine.Render()
	if err != nil {
		return err
	}

	output := s.Output
	if output == "" {
		output = defaultOutput(s.Scene, time.Now())
	}
	var out display.Display = display.NewPNGWriter(output)
	if err := out.Present(bitmap.Pix, bitmap.Width, bitmap.Height); err != nil {
		return err
	}

	stats := engine.LastStats()
	logger.Info().
		Str("output", output).
		Dur("elapsed", stats.Elapsed).
		Float64("pixels_per_second", stats.PixelsPerSecond()).
		Msg("render saved")
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
