package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/diagram"
)

var (
	displayRevision      string
	displayFilename      string
	displayInputNotebook string
	displayNoODAInfo     bool
	displayEngine        string
	displayConsume       bool
)

var displayCmd = &cobra.Command{
	Use:   "display [project-path]",
	Short: "Render the provenance graph as a static image",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := diagram.FormatFor(displayFilename); err != nil {
			return err
		}
		a, err := setup(ctx, args)
		if err != nil {
			return err
		}
		engine := a.settings.Engine
		if cmd.Flags().Changed("engine") {
			engine = displayEngine
		}

		res, err := a.build(ctx, displayRevision, displayInputNotebook, !displayNoODAInfo, displayConsume)
		if err != nil {
			return err
		}

		r := diagram.New(a.bundle.Styles, a.settings.DotBin, engine)
		src := r.Source(res.Graph, res.Types)
		base := strings.TrimSuffix(displayFilename, filepath.Ext(displayFilename))
		if err := writeOutput(ctx, base+".dot", []byte(src)); err != nil {
			return err
		}
		if err := writeGraph(ctx, base+".ttl", res.Graph); err != nil {
			return err
		}
		if err := r.RenderSource(ctx, src, displayFilename); err != nil {
			return err
		}

		printSummary(res)
		fmt.Printf("\n  Image written to %s\n", displayFilename)
		return nil
	},
}

func init() {
	displayCmd.Flags().StringVar(&displayRevision, "revision", "", "Git revision to export (default: working tree)")
	displayCmd.Flags().StringVar(&displayFilename, "filename", "graph.png", "Output image (.png, .svg, .pdf)")
	displayCmd.Flags().StringVar(&displayInputNotebook, "input-notebook", "", "Only activities that used this input notebook")
	displayCmd.Flags().BoolVar(&displayNoODAInfo, "no-oda-info", false, "Leave out astroquery request information")
	displayCmd.Flags().StringVar(&displayEngine, "engine", "fdp", "Graphviz layout engine (fdp, dot)")
	displayCmd.Flags().BoolVar(&displayConsume, "consume-annotations", false, "Delete annotation fragments once folded")
	rootCmd.AddCommand(displayCmd)
}
