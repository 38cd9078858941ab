package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roomodes/roomodes/pkg/models"
)

var modesBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse loaded modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}

		listed := registry.List("all")
		if len(listed) == 0 {
			return fmt.Errorf("no modes loaded")
		}

		if _, err := tea.NewProgram(newBrowseModel(listed)).Run(); err != nil {
			return fmt.Errorf("running mode browser: %w", err)
		}
		return nil
	},
}

func init() {
	modesCmd.AddCommand(modesBrowseCmd)
}

type browseModel struct {
	modes      []*models.Mode
	cursor     int
	showDetail bool
	showPrompt bool
}

func newBrowseModel(listed []*models.Mode) browseModel {
	return browseModel{modes: listed}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.showDetail {
			m.showDetail = false
			m.showPrompt = false
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if !m.showDetail && m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if !m.showDetail && m.cursor < len(m.modes)-1 {
			m.cursor++
		}
	case "enter":
		m.showDetail = true
	case "p":
		if m.showDetail {
			m.showPrompt = !m.showPrompt
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	if m.showDetail {
		detail := renderModeDetail(m.modes[m.cursor], m.showPrompt)
		return detail + "\n" + helpStyle.Render("p toggle system prompt · esc back · q quit") + "\n"
	}

	s := sectionStyle.Render("Modes") + "\n\n"
	for i, mode := range m.modes {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s %s  %s", marker,
			modeNameStyle.Render(mode.Name),
			modeSlugStyle.Render("("+mode.Slug+")"),
			sourceStyle(mode.Source).Render(string(mode.Source)))
		s += line + "\n"
	}
	s += "\n" + helpStyle.Render("↑/↓ move · enter details · q quit") + "\n"
	return s
}
