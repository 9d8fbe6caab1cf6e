package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/cmd/tui/internal/view"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/config"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/database"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
	memberStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member/store"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
	shuStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu/store"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
	txStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction/store"
)

type model struct {
	appName     string
	loanService *loan.Service
	shuService  *shu.Service

	currentView View

	loansView   view.LoansModel
	formulaView view.FormulaModel
}

type View int

const (
	ViewMenu    View = 0
	ViewLoans   View = 1
	ViewFormula View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	shuOpts := []shu.Option{shu.WithPreviewSize(cfg.SHU.PreviewSize)}
	if cfg.SHU.PreviewSeed != 0 {
		shuOpts = append(shuOpts, shu.WithSeed(cfg.SHU.PreviewSeed))
	}

	txSvc := transaction.NewService(txStore.New(db))
	loanSvc := loan.NewService(txSvc)
	memberSvc := member.NewService(memberStore.New(db))
	shuSvc := shu.NewService(shuStore.New(db), memberSvc, txSvc, shuOpts...)

	return model{
		appName:     cfg.App.Name,
		loanService: loanSvc,
		shuService:  shuSvc,
		currentView: ViewMenu,
		loansView:   view.NewLoansModel(loanSvc),
		formulaView: view.NewFormulaModel(shuSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewLoans
				m.loansView = view.NewLoansModel(m.loanService)

				return m, m.loansView.Init()
			case "2":
				m.currentView = ViewFormula
				m.formulaView = view.NewFormulaModel(m.shuService)

				return m, m.formulaView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLoans:
		var newModel tea.Model
		newModel, cmd = m.loansView.Update(msg)
		m.loansView = newModel.(view.LoansModel)
	case ViewFormula:
		var newModel tea.Model
		newModel, cmd = m.formulaView.Update(msg)
		m.formulaView = newModel.(view.FormulaModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Member Loans\n" +
				"2. Formula Playground\n\n" +
				"q. Quit",
		)
	case ViewLoans:
		return m.loansView.View()
	case ViewFormula:
		return m.formulaView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
