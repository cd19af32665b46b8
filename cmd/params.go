package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/query"
)

var (
	paramsRevision      string
	paramsFilename      string
	paramsInputNotebook string
	paramsJSON          bool
	paramsConsume       bool
)

type paramRow struct {
	RunID   string `json:"run_id"`
	Run     string `json:"run"`
	Module  string `json:"module"`
	Request string `json:"request"`
	Target  string `json:"target"`
}

var paramsCmd = &cobra.Command{
	Use:   "params [project-path]",
	Short: "List the parameters of astroquery requests",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, args)
		if err != nil {
			return err
		}
		full, err := a.fullGraph(ctx, paramsRevision, paramsConsume)
		if err != nil {
			return err
		}

		opts := query.Options{Scope: paramsInputNotebook, IncludeDomainInfo: true}
		requests, rep := query.Requests(full, opts)
		if w := rep.Warning(); w != "" {
			a.logger.Warn(w, "count", rep.InvalidEntries)
		}

		sub, _ := query.Extract(full, opts)
		if err := writeGraph(ctx, paramsFilename, sub); err != nil {
			return err
		}
		a.logger.Debug("wrote subgraph", "path", paramsFilename, "triples", sub.Len())

		rows := make([]paramRow, 0, len(requests))
		for _, r := range requests {
			rows = append(rows, paramRow{
				RunID:   r.RunID(),
				Run:     r.Run.Value,
				Module:  r.ModuleName,
				Request: r.Kind.String(),
				Target:  r.TargetName,
			})
		}

		if paramsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		t := newTable("Run ID", "AstroQuery Module", "Request", "Astro Target")
		for _, r := range rows {
			t.Row(truncTitle(r.RunID, 40), r.Module, r.Request, r.Target)
		}
		fmt.Println(t)
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%d requests, subgraph written to %s", len(rows), paramsFilename)))
		return nil
	},
}

func init() {
	paramsCmd.Flags().StringVar(&paramsRevision, "revision", "", "Git revision to export (default: working tree)")
	paramsCmd.Flags().StringVar(&paramsFilename, "filename", "subgraph.ttl", "Where to write the extracted subgraph (.ttl or .nt)")
	paramsCmd.Flags().StringVar(&paramsInputNotebook, "input-notebook", "", "Only runs of activities that used this input notebook")
	paramsCmd.Flags().BoolVar(&paramsJSON, "json", false, "Output as JSON")
	paramsCmd.Flags().BoolVar(&paramsConsume, "consume-annotations", false, "Delete annotation fragments once folded")
	rootCmd.AddCommand(paramsCmd)
}
