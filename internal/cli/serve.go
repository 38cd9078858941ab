package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	app "github.com/roomodes/roomodes/internal"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP modes server on stdio",
	Long: `Start the MCP modes server on stdio transport.

The server speaks JSON-RPC 2.0, one message per line. Responses are the only
thing written to stdout; diagnostics go to stderr or the configured log
file. The process exits when stdin reaches EOF.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		a, err := app.NewApp(cfg, appVersion)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return a.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
