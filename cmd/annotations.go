package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/annotation"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
)

var annotationsJSON bool

var annotationsCmd = &cobra.Command{
	Use:   "annotations",
	Short: "Inspect pending astroquery annotation fragments",
}

type fragmentRow struct {
	Checksum   string   `json:"checksum"`
	Body       string   `json:"body"`
	Triples    int      `json:"triples"`
	Activities []string `json:"activities"`
}

var annotationsListCmd = &cobra.Command{
	Use:   "list [project-path]",
	Short: "List fragments and the activities they attach to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, args)
		if err != nil {
			return err
		}
		store, err := a.annotations()
		if err != nil {
			return err
		}
		frags, err := store.Load(ctx)
		if err != nil {
			return err
		}

		// matching needs the provenance graph; without it fragments are
		// still listed
		var g *rdf.Graph
		if len(frags) > 0 {
			if g, err = a.rawGraph(ctx); err != nil {
				a.logger.Warn("provenance graph unavailable, activities not resolved", "err", err)
			}
		}

		rows := make([]fragmentRow, 0, len(frags))
		for _, f := range frags {
			row := fragmentRow{Checksum: f.Checksum, Body: f.ID, Triples: f.Graph.Len(), Activities: []string{}}
			if g != nil {
				for _, act := range annotation.ActivitiesFor(g, f.Checksum) {
					row.Activities = append(row.Activities, act.Value)
				}
			}
			rows = append(rows, row)
		}

		if annotationsJSON {
			return encodeJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Printf("  No fragments in %s\n", store.Dir())
			return nil
		}
		t := newTable("Checksum", "Body", "Triples", "Activity")
		for _, r := range rows {
			act := "-"
			if len(r.Activities) > 0 {
				act = truncTitle(filepath.Base(r.Activities[0]), 40)
			}
			t.Row(truncTitle(r.Checksum, 16), truncTitle(r.Body, 50), fmt.Sprint(r.Triples), act)
		}
		fmt.Println(t)
		fmt.Println(mutedStyle.Render(fmt.Sprintf("  %d fragments in %s", len(rows), store.Dir())))
		return nil
	},
}

func init() {
	annotationsCmd.PersistentFlags().BoolVar(&annotationsJSON, "json", false, "Output as JSON")
	annotationsCmd.AddCommand(annotationsListCmd)
	rootCmd.AddCommand(annotationsCmd)
}
