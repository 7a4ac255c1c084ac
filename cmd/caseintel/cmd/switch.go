package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/legalcase/caseintel/internal/output"
	"github.com/legalcase/caseintel/internal/registry"
)

func newSwitchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "switch [case-id]",
		Short: "Change the active case",
		Long: `Change the registry's active case, per spec.md §4.D. With a case id
argument, switches directly. Run from a real terminal with no argument to
pick interactively from the list of cases.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwitch(cmd, args)
		},
	}
	return c
}

func runSwitch(cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	reg, err := openRegistry(cfg)
	if err != nil {
		return fmt.Errorf("opening case registry: %w", err)
	}
	defer func() { _ = reg.Close() }()

	if len(args) == 1 {
		if _, err := reg.Switch(args[0]); err != nil {
			return fmt.Errorf("switching to case %s: %w", args[0], err)
		}
		out.Successf("active case is now %s", args[0])
		return nil
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return newInvalidArgsError("switch requires a case id argument when not run from a terminal")
	}

	cases, err := reg.List()
	if err != nil {
		return fmt.Errorf("listing cases: %w", err)
	}
	if len(cases) == 0 {
		out.Status("", "no cases to switch to")
		return nil
	}

	chosen, err := pickCaseInteractively(cases)
	if err != nil {
		return err
	}
	if chosen == "" {
		out.Status("", "cancelled")
		return nil
	}

	if _, err := reg.Switch(chosen); err != nil {
		return fmt.Errorf("switching to case %s: %w", chosen, err)
	}
	out.Successf("active case is now %s", chosen)
	return nil
}

type caseItem struct {
	id, name, status string
}

func (i caseItem) Title() string       { return i.name }
func (i caseItem) Description() string { return fmt.Sprintf("%s · %s", i.id, i.status) }
func (i caseItem) FilterValue() string { return i.name }

type switchModel struct {
	list   list.Model
	chosen string
}

func (m switchModel) Init() tea.Cmd { return nil }

func (m switchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(caseItem); ok {
				m.chosen = item.id
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

var switchTitleStyle = lipgloss.NewStyle().Bold(true)

func (m switchModel) View() string {
	return m.list.View()
}

// pickCaseInteractively runs a bubbletea list picker over cases and returns
// the chosen case id, or "" if the user cancelled.
func pickCaseInteractively(cases []*registry.Case) (string, error) {
	items := make([]list.Item, len(cases))
	for i, c := range cases {
		items[i] = caseItem{id: c.ID, name: c.Name, status: string(c.Status)}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a case"
	l.Styles.Title = switchTitleStyle

	m := switchModel{list: l}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running case picker: %w", err)
	}

	result, ok := final.(switchModel)
	if !ok {
		return "", nil
	}
	return result.chosen, nil
}
