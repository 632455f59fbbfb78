// Package cli implements the taxon command line.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/taxon/internal/artifact"
	"github.com/crimson-sun/taxon/internal/buildinfo"
	"github.com/crimson-sun/taxon/internal/config"
	"github.com/crimson-sun/taxon/internal/engine"
	"github.com/crimson-sun/taxon/internal/logging"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	// logOut receives log records; stderr unless a test swaps it.
	logOut io.Writer
}

// loadEngine loads the artifact set named by the config and builds the
// dispatcher over it. The returned Set must be closed.
func (a *app) loadEngine() (*engine.Engine, *artifact.Set, error) {
	set, err := artifact.Load(a.cfg.Model.ManifestPath, artifact.Options{
		ONNXLibrary: a.cfg.Model.ONNXLibrary,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(set.Context, engine.WithLogger(a.logger))
	if err != nil {
		set.Close()
		return nil, nil, err
	}
	return eng, set, nil
}

func newRootCmd() *cobra.Command {
	a := &app{logOut: os.Stderr}

	var (
		manifest    string
		onnxLibrary string
		logLevel    string
		logFormat   string
	)

	cmd := &cobra.Command{
		Use:          "taxon",
		Short:        "Two-level text classification for support tickets",
		Version:      buildinfo.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.Load()
			flags := cmd.Flags()
			if flags.Changed("manifest") {
				a.cfg.Model.ManifestPath = manifest
			}
			if flags.Changed("onnx-library") {
				a.cfg.Model.ONNXLibrary = onnxLibrary
			}
			if flags.Changed("log-level") {
				a.cfg.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				a.cfg.Log.Format = logFormat
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.logger = logging.New(a.logOut, a.cfg.Log.Format == "json", logging.ParseLevel(a.cfg.Log.Level))
			slog.SetDefault(a.logger)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&manifest, "manifest", "m", "", "artifact manifest (default $TAXON_MANIFEST or models/manifest.yaml)")
	pf.StringVar(&onnxLibrary, "onnx-library", "", "path to the ONNX Runtime shared library")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "text or json")

	cmd.AddCommand(
		serveCmd(a),
		classifyCmd(a),
		batchCmd(a),
		validateCmd(a),
		taxonomyCmd(a),
	)
	return cmd
}
