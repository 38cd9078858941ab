package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/pkg/models"
)

// Style definitions for mode rendering.
var (
	modeNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	modeSlugStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sourceBuiltinStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sourceGlobalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	sourceProjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	groupEnabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	groupDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	restrictionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			MarginTop(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Inspect the loaded mode registry",
}

var modesListSource string

var modesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		filter := modes.SourceFilter(modesListSource)
		if !modes.ValidSourceFilters[filter] {
			return fmt.Errorf("invalid source %q: must be one of builtin, global, project, all", modesListSource)
		}

		for _, mode := range registry.List(filter) {
			fmt.Printf("%s %s  %s\n",
				modeNameStyle.Render(mode.Name),
				modeSlugStyle.Render("("+mode.Slug+")"),
				sourceStyle(mode.Source).Render(string(mode.Source)))
			if mode.Description != "" {
				fmt.Printf("  %s\n", mode.Description)
			}
			fmt.Printf("  %s\n", renderGroupSummary(mode))
		}
		return nil
	},
}

var modesShowPrompt bool

var modesShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show full details for one mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		mode := registry.Get(args[0])
		if mode == nil {
			return fmt.Errorf("mode %q not found (available: %s)", args[0], strings.Join(registry.Slugs(), ", "))
		}

		fmt.Println(renderModeDetail(mode, modesShowPrompt))
		return nil
	},
}

func init() {
	modesListCmd.Flags().StringVar(&modesListSource, "source", "all", "filter by source (builtin, global, project, all)")
	modesShowCmd.Flags().BoolVar(&modesShowPrompt, "system-prompt", false, "include the rendered system prompt")

	modesCmd.AddCommand(modesListCmd)
	modesCmd.AddCommand(modesShowCmd)
	rootCmd.AddCommand(modesCmd)
}

// loadRegistry builds the registry the same way the server does, but logs
// only warnings to keep CLI output clean.
func loadRegistry() (*modes.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.WarnLevel)
	return modes.Load(cfg.ProjectRoot, cfg.ConfigDir, log), nil
}

func sourceStyle(source models.ModeSource) lipgloss.Style {
	switch source {
	case models.SourceProject:
		return sourceProjectStyle
	case models.SourceGlobal:
		return sourceGlobalStyle
	default:
		return sourceBuiltinStyle
	}
}

func renderGroupSummary(mode *models.Mode) string {
	parts := make([]string, 0, len(models.AllToolGroups))
	for _, group := range models.AllToolGroups {
		if mode.IsGroupEnabled(group) {
			label := string(group)
			if opts := mode.GroupOptions(group); opts != nil && opts.FileRegex != "" {
				label += restrictionStyle.Render(" ["+opts.FileRegex+"]")
			}
			parts = append(parts, groupEnabledStyle.Render(label))
		} else {
			parts = append(parts, groupDisabledStyle.Render(string(group)))
		}
	}
	return strings.Join(parts, " ")
}

func renderModeDetail(mode *models.Mode, includePrompt bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n",
		modeNameStyle.Render(mode.Name),
		modeSlugStyle.Render("("+mode.Slug+")"),
		sourceStyle(mode.Source).Render(string(mode.Source)))

	if mode.Description != "" {
		fmt.Fprintf(&b, "%s\n", mode.Description)
	}
	if mode.WhenToUse != "" {
		fmt.Fprintf(&b, "%s\n%s\n", sectionStyle.Render("When to use"), mode.WhenToUse)
	}

	fmt.Fprintf(&b, "%s\n%s\n", sectionStyle.Render("Tool groups"), renderGroupSummary(mode))

	if mode.CustomInstructions != "" {
		fmt.Fprintf(&b, "%s\n%s\n", sectionStyle.Render("Custom instructions"), mode.CustomInstructions)
	}
	if includePrompt {
		fmt.Fprintf(&b, "%s\n%s\n", sectionStyle.Render("System prompt"), modes.SystemPrompt(mode))
	}

	return b.String()
}
