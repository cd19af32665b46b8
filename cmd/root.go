package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/oda-hub/deprecated-renku-aqs/internal/annotation"
	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
	"github.com/oda-hub/deprecated-renku-aqs/internal/pipeline"
	"github.com/oda-hub/deprecated-renku-aqs/internal/provenance"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

var (
	projectDir string
	configPath string
	graphFile  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "aqs",
	Short:         "Astroquery provenance graphs for renku projects",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to the renku project (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default: <project>/"+config.ProjectFile+")")
	rootCmd.PersistentFlags().StringVar(&graphFile, "graph", "", "Read the provenance graph from a Turtle or N-Triples file instead of renku")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
}

// DiscoverProject finds the project root using priority: argument > flag >
// walk-up to a directory holding .renku > working directory
func DiscoverProject(args []string) (string, error) {
	if len(args) > 0 {
		return checkDir(args[0])
	}
	if projectDir != "" {
		return checkDir(projectDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ".renku")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd, nil
}

func checkDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path is not a directory: %s", abs)
	}
	return abs, nil
}

// app is what every subcommand loads once per invocation
type app struct {
	project  string
	settings config.Settings
	bundle   *config.Bundle
	logger   *slog.Logger
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// setup resolves the project and loads settings and the graphical
// configuration. Settings come from the file, then AQS_* variables.
func setup(ctx context.Context, args []string) (*app, error) {
	logger := newLogger()
	project, err := DiscoverProject(args)
	if err != nil {
		return nil, err
	}

	path, explicit := configPath, configPath != ""
	if !explicit {
		path = filepath.Join(project, config.ProjectFile)
	}
	settings, err := config.LoadSettings(path, explicit)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	bundle, err := config.LoadBundle(ctx, settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load graphical configuration: %w", err)
	}
	logger.Debug("project", "dir", project, "settings", path)
	return &app{project: project, settings: settings, bundle: bundle, logger: logger}, nil
}

func (a *app) annotations() (*annotation.Store, error) {
	dir := a.settings.AnnotationsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.project, dir)
	}
	return annotation.Open(dir)
}

// fullGraph returns the exported provenance graph with pending annotation
// fragments folded in. consume deletes the fragments that were folded.
func (a *app) fullGraph(ctx context.Context, revision string, consume bool) (*rdf.Graph, error) {
	g, err := a.exportGraph(ctx, revision)
	if err != nil {
		return nil, err
	}

	store, err := a.annotations()
	if err != nil {
		return nil, err
	}
	frags, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}
	if len(frags) == 0 {
		return g, nil
	}
	folded, rep, err := annotation.Fold(g, frags)
	if err != nil {
		return nil, err
	}
	for _, f := range rep.Unmatched {
		a.logger.Warn("annotation matches no generated artifact", "checksum", f.Checksum)
	}
	a.logger.Debug("folded annotations", "folded", len(rep.Folded), "unmatched", len(rep.Unmatched))
	if consume {
		if err := store.Consume(ctx, rep.Folded); err != nil {
			return nil, err
		}
	}
	return folded, nil
}

// exportGraph reads --graph when given, otherwise asks renku
func (a *app) exportGraph(ctx context.Context, revision string) (*rdf.Graph, error) {
	if graphFile != "" {
		return rdf.LoadFile(graphFile)
	}
	exp := &provenance.Exporter{RenkuBin: a.settings.RenkuBin, ProjectDir: a.project, Logger: a.logger}
	return exp.Export(ctx, revision)
}

// rawGraph is the working tree graph without annotations
func (a *app) rawGraph(ctx context.Context) (*rdf.Graph, error) {
	return a.exportGraph(ctx, "")
}

// build runs the full pipeline over a fresh export
func (a *app) build(ctx context.Context, revision, scope string, domainInfo, consume bool) (*pipeline.Result, error) {
	full, err := a.fullGraph(ctx, revision, consume)
	if err != nil {
		return nil, err
	}
	return pipeline.Build(full, pipeline.Options{Scope: scope, IncludeDomainInfo: domainInfo, Logger: a.logger})
}

// writeGraph serializes g to path, choosing the format from its extension
func writeGraph(ctx context.Context, path string, g *rdf.Graph) error {
	f, err := rdf.FormatForPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := g.Write(&buf, f); err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}
	return writeOutput(ctx, path, buf.Bytes())
}

func writeOutput(ctx context.Context, path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := afs.New().Upload(ctx, abs, 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
