package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/explore"
	"github.com/oda-hub/deprecated-renku-aqs/internal/pipeline"
	"github.com/oda-hub/deprecated-renku-aqs/internal/runner"
	"github.com/oda-hub/deprecated-renku-aqs/internal/webview"
)

var (
	showRevision      string
	showFilename      string
	showInputNotebook string
	showNoODAInfo     bool
	showNoServe       bool
	showNoBrowser     bool
	showPort          int
	showConsume       bool
)

var showGraphCmd = &cobra.Command{
	Use:   "show-graph [project-path]",
	Short: "Write the interactive graph page and open it in a browser",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, args)
		if err != nil {
			return err
		}
		res, err := a.build(ctx, showRevision, showInputNotebook, !showNoODAInfo, showConsume)
		if err != nil {
			return err
		}

		store := explore.NewGraphStore(res.Graph, res.Types, a.bundle)
		pages := webview.New(a.bundle)
		opts := webview.Options{Title: "Provenance of " + a.project}
		if err := pages.WriteFile(ctx, showFilename, store, webview.StaticView(store, a.bundle), opts); err != nil {
			return err
		}
		printSummary(res)
		fmt.Printf("\n  Page written to %s\n", showFilename)
		if showNoServe {
			return nil
		}

		port := a.settings.Port
		if cmd.Flags().Changed("port") {
			port = showPort
		}
		// served pages re-export; consumed fragments are gone by then
		build := func(ctx context.Context) (*pipeline.Result, error) {
			return a.build(ctx, showRevision, showInputNotebook, !showNoODAInfo, false)
		}
		var ready func(string)
		if !showNoBrowser {
			ready = func(url string) { go openBrowser(a, url) }
		}
		return a.serve(ctx, build, port, 0, ready)
	},
}

// openBrowser launches the platform URL opener. Failure only logs.
func openBrowser(a *app, url string) {
	bin, args := "xdg-open", []string{url}
	switch runtime.GOOS {
	case "darwin":
		bin = "open"
	case "windows":
		bin, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
	}
	if _, err := runner.Run(context.Background(), "", bin, args...); err != nil {
		a.logger.Warn("could not open a browser", "url", url, "err", err)
	}
}

func init() {
	showGraphCmd.Flags().StringVar(&showRevision, "revision", "", "Git revision to export (default: working tree)")
	showGraphCmd.Flags().StringVar(&showFilename, "filename", "graph.html", "Where to write the page")
	showGraphCmd.Flags().StringVar(&showInputNotebook, "input-notebook", "", "Only activities that used this input notebook")
	showGraphCmd.Flags().BoolVar(&showNoODAInfo, "no-oda-info", false, "Leave out astroquery request information")
	showGraphCmd.Flags().BoolVar(&showNoServe, "no-serve", false, "Only write the page")
	showGraphCmd.Flags().BoolVar(&showNoBrowser, "no-browser", false, "Serve without opening a browser")
	showGraphCmd.Flags().IntVar(&showPort, "port", 8050, "Port to listen on")
	showGraphCmd.Flags().BoolVar(&showConsume, "consume-annotations", false, "Delete annotation fragments once folded")
	rootCmd.AddCommand(showGraphCmd)
}
