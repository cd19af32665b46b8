package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/oda-hub/deprecated-renku-aqs/internal/pipeline"
	"github.com/oda-hub/deprecated-renku-aqs/internal/server"
)

var (
	serveRevision      string
	serveInputNotebook string
	serveNoODAInfo     bool
	servePort          int
	serveMaxSessions   int
)

var serveCmd = &cobra.Command{
	Use:   "serve [project-path]",
	Short: "Serve the interactive graph with a fresh export per page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), args)
		if err != nil {
			return err
		}
		port := a.settings.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		build := func(ctx context.Context) (*pipeline.Result, error) {
			return a.build(ctx, serveRevision, serveInputNotebook, !serveNoODAInfo, false)
		}
		return a.serve(cmd.Context(), build, port, serveMaxSessions, nil)
	},
}

// serve runs the HTTP shim until interrupted. ready is called once the
// listener is about to start.
func (a *app) serve(ctx context.Context, build server.Builder, port, maxSessions int, ready func(url string)) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(build, a.bundle, server.Options{
		Title:       "Provenance of " + a.project,
		MaxSessions: maxSessions,
		Logger:      a.logger,
	})
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	url := "http://" + addr + "/"
	fmt.Printf("  Serving %s (Ctrl-C to stop)\n", url)
	if ready != nil {
		ready(url)
	}
	return srv.Run(ctx, addr)
}

func init() {
	serveCmd.Flags().StringVar(&serveRevision, "revision", "", "Git revision to export (default: working tree)")
	serveCmd.Flags().StringVar(&serveInputNotebook, "input-notebook", "", "Only activities that used this input notebook")
	serveCmd.Flags().BoolVar(&serveNoODAInfo, "no-oda-info", false, "Leave out astroquery request information")
	serveCmd.Flags().IntVar(&servePort, "port", 8050, "Port to listen on")
	serveCmd.Flags().IntVar(&serveMaxSessions, "max-sessions", server.DefaultMaxSessions, "Exploration sessions kept in memory")
	rootCmd.AddCommand(serveCmd)
}
