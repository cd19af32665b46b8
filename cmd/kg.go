package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/db"
	"github.com/oda-hub/deprecated-renku-aqs/internal/provenance"
	"github.com/oda-hub/deprecated-renku-aqs/internal/query"
	"github.com/oda-hub/deprecated-renku-aqs/internal/rdf"
	"github.com/oda-hub/deprecated-renku-aqs/internal/runner"
)

var (
	kgUpstream    string
	kgRevision    string
	kgConsume     bool
	kgFilename    string
	kgJSON        bool
	kgSearchLimit int
)

var kgCmd = &cobra.Command{
	Use:   "kg",
	Short: "Maintain the upstream knowledge graph",
}

// openUpstream resolves the store path: --upstream > AQS_KG_PATH > settings
func openUpstream(a *app) (*db.DB, string, error) {
	path := a.settings.KGPath
	if kgUpstream != "" {
		path = kgUpstream
	}
	path = strings.TrimPrefix(path, "file://")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", err
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, "", fmt.Errorf("open upstream %s: %w", path, err)
	}
	return d, path, nil
}

var kgPushCmd = &cobra.Command{
	Use:   "push [project-path]",
	Short: "Merge the project's astroquery subgraph into the upstream graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, args)
		if err != nil {
			return err
		}
		full, err := a.fullGraph(ctx, kgRevision, kgConsume)
		if err != nil {
			return err
		}
		sub, rep := query.Extract(full, query.Options{IncludeDomainInfo: true})
		if w := rep.Warning(); w != "" {
			a.logger.Warn(w, "count", rep.InvalidEntries)
		}
		normalized, err := provenance.NormalizeLocal(ctx, sub, provenance.ProjectURI)
		if err != nil {
			return fmt.Errorf("normalize local IRIs: %w", err)
		}

		project, err := provenance.ProjectURI(ctx, a.project)
		if err != nil {
			a.logger.Debug("no origin remote, using path", "err", err)
			project = a.project
		}
		revision := kgRevision
		if revision == "" {
			if head, err := runner.Head(ctx, a.project); err == nil {
				revision = head
			}
		}

		d, path, err := openUpstream(a)
		if err != nil {
			return err
		}
		defer d.Close()
		p, err := d.PushGraph(normalized, project, revision)
		if err != nil {
			return err
		}
		if kgJSON {
			return encodeJSON(p)
		}
		fmt.Printf("  Pushed %d triples (%d new) from %s to %s\n", p.Triples, p.Added, project, path)
		fmt.Println(mutedStyle.Render("  push " + p.ID))
		return nil
	},
}

var kgExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the upstream graph as Turtle or N-Triples",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, nil)
		if err != nil {
			return err
		}
		d, _, err := openUpstream(a)
		if err != nil {
			return err
		}
		defer d.Close()
		g, err := d.Graph()
		if err != nil {
			return err
		}
		if kgFilename == "" {
			return g.Write(os.Stdout, rdf.Turtle)
		}
		if err := writeGraph(ctx, kgFilename, g); err != nil {
			return err
		}
		fmt.Printf("  Wrote %d triples to %s\n", g.Len(), kgFilename)
		return nil
	},
}

var kgStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the upstream graph and its pushes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		d, path, err := openUpstream(a)
		if err != nil {
			return err
		}
		defer d.Close()
		s, err := d.Stats()
		if err != nil {
			return err
		}
		pushes, err := d.Pushes()
		if err != nil {
			return err
		}
		if kgJSON {
			return encodeJSON(struct {
				Path   string    `json:"path"`
				Stats  db.Stats  `json:"stats"`
				Pushes []db.Push `json:"pushes"`
			}{path, s, pushes})
		}

		fmt.Println(titleStyle.Render("  " + path))
		fmt.Printf("  Triples: %d  Subjects: %d  Pushes: %d  Projects: %d\n\n", s.Triples, s.Subjects, s.Pushes, s.Projects)
		if len(pushes) == 0 {
			return nil
		}
		t := newTable("Push", "Project", "Revision", "When", "Sent", "New")
		for _, p := range pushes {
			t.Row(p.ID[:8], truncTitle(p.Project, 50), p.Revision,
				time.UnixMilli(p.PushedAt).Format(time.DateTime),
				fmt.Sprint(p.Triples), fmt.Sprint(p.Added))
		}
		fmt.Println(t)
		return nil
	},
}

var kgSearchCmd = &cobra.Command{
	Use:   "search <terms>",
	Short: "Find literals in the upstream graph",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		d, _, err := openUpstream(a)
		if err != nil {
			return err
		}
		defer d.Close()
		found, err := d.SearchLiterals(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if kgSearchLimit > 0 && len(found) > kgSearchLimit {
			found = found[:kgSearchLimit]
		}
		if kgJSON {
			return encodeJSON(found)
		}
		if len(found) == 0 {
			fmt.Println("  No matches")
			return nil
		}
		t := newTable("Subject", "Predicate", "Value")
		for _, tr := range found {
			t.Row(truncTitle(tr.Subject, 60), truncTitle(tr.Predicate, 50), truncTitle(tr.Object, 60))
		}
		fmt.Println(t)
		return nil
	},
}

var kgDeleteCmd = &cobra.Command{
	Use:   "delete <push-id>",
	Short: "Remove the triples a push introduced",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), nil)
		if err != nil {
			return err
		}
		d, _, err := openUpstream(a)
		if err != nil {
			return err
		}
		defer d.Close()
		n, err := d.DeletePush(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Removed push %s (%d triples)\n", args[0], n)
		return nil
	},
}

func encodeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	kgCmd.PersistentFlags().StringVarP(&kgUpstream, "upstream", "u", "", "Upstream graph database (default: AQS_KG_PATH or ~/.kg.db)")
	kgCmd.PersistentFlags().BoolVar(&kgJSON, "json", false, "Output as JSON")

	kgPushCmd.Flags().StringVar(&kgRevision, "revision", "", "Git revision to export (default: working tree)")
	kgPushCmd.Flags().BoolVar(&kgConsume, "consume-annotations", false, "Delete annotation fragments once folded")
	kgExportCmd.Flags().StringVar(&kgFilename, "filename", "", "Output file (.ttl or .nt, default: Turtle on stdout)")
	kgSearchCmd.Flags().IntVar(&kgSearchLimit, "limit", 50, "Maximum matches to show (0 for all)")

	kgCmd.AddCommand(kgPushCmd, kgExportCmd, kgStatsCmd, kgSearchCmd, kgDeleteCmd)
	rootCmd.AddCommand(kgCmd)
}
