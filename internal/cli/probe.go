package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var probeTimeout time.Duration

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Exercise the server end-to-end with the official MCP client",
	Long: `Launch "roomodes serve" as a subprocess and drive it through the
official MCP Go SDK client: initialize handshake, tools/list, a list_modes
call, and resources/list. Useful as a smoke test of the wire protocol
against an independent client implementation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating own binary: %w", err)
		}

		serveArgs := []string{"serve"}
		if flagProjectRoot != "" {
			serveArgs = append(serveArgs, "--project-root", flagProjectRoot)
		}
		if flagConfigPath != "" {
			serveArgs = append(serveArgs, "--config", flagConfigPath)
		}
		if flagLogLevel != "" {
			serveArgs = append(serveArgs, "--log-level", flagLogLevel)
		}
		if flagLogFile != "" {
			serveArgs = append(serveArgs, "--log-file", flagLogFile)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), probeTimeout)
		defer cancel()

		client := gomcp.NewClient(&gomcp.Implementation{
			Name:    "roomodes-probe",
			Version: appVersion,
		}, nil)

		transport := &gomcp.CommandTransport{Command: exec.Command(exe, serveArgs...)}
		session, err := client.Connect(ctx, transport, nil)
		if err != nil {
			return fmt.Errorf("connecting to server: %w", err)
		}
		defer session.Close()

		fmt.Println("✓ initialize handshake")

		tools, err := session.ListTools(ctx, nil)
		if err != nil {
			return fmt.Errorf("listing tools: %w", err)
		}
		fmt.Printf("✓ tools/list: %d tools\n", len(tools.Tools))
		for _, t := range tools.Tools {
			fmt.Printf("    %s\n", t.Name)
		}

		result, err := session.CallTool(ctx, &gomcp.CallToolParams{
			Name:      "list_modes",
			Arguments: map[string]any{"source": "all"},
		})
		if err != nil {
			return fmt.Errorf("calling list_modes: %w", err)
		}
		fmt.Println("✓ tools/call list_modes:")
		for _, content := range result.Content {
			if text, ok := content.(*gomcp.TextContent); ok {
				fmt.Println(indent(text.Text, "    "))
			}
		}

		resources, err := session.ListResources(ctx, nil)
		if err != nil {
			return fmt.Errorf("listing resources: %w", err)
		}
		fmt.Printf("✓ resources/list: %d resources\n", len(resources.Resources))

		return nil
	},
}

func init() {
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second, "overall probe timeout")
	rootCmd.AddCommand(probeCmd)
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n"+prefix)
}
