package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/folioadmin/folioadmin/internal/dashboard"
)

// NewDashCmd creates the dash command
func NewDashCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Serve the web dashboard locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.Config.Dashboard.Addr = addr
			}
			return runDash(cmd.Context(), app, open)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (or set FOLIO_DASH_ADDR)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the dashboard in the browser")

	return cmd
}

func runDash(ctx context.Context, app *App, open bool) error {
	srv, err := dashboard.New(app.Config, app.Sessions, app.Content, app.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dashboardURL := "http://" + browsable(app.Config.Dashboard.Addr)
	fmt.Fprintf(os.Stderr, "Dashboard: %s (Ctrl+C to stop)\n", dashboardURL)

	if open {
		if err := openBrowser(dashboardURL); err != nil {
			fmt.Fprintf(os.Stderr, "failed to open browser: %v\nPlease visit: %s\n", err, dashboardURL)
		}
	}

	return srv.Start(ctx)
}

// browsable turns a listen address into one a browser can reach.
func browsable(addr string) string {
	switch {
	case strings.HasPrefix(addr, ":"):
		return "localhost" + addr
	case strings.HasPrefix(addr, "0.0.0.0:"):
		return "localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return addr
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
