package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
)

type loansState int

const (
	loansStateMember loansState = iota
	loansStateList
	loansStateSchedule
)

// LoansModel browses the loans of one member and their schedules.
type LoansModel struct {
	CommonModel
	loanService *loan.Service

	state    loansState
	form     *huh.Form
	loans    table.Model
	schedule table.Model

	anggotaID string
	items     []*loan.Details
	selected  *loan.Details
	total     int64
	remaining int

	loading bool
	err     error
}

func NewLoansModel(loanSvc *loan.Service) LoansModel {
	m := LoansModel{
		loanService: loanSvc,
		loans: newTable([]table.Column{
			{Title: "Tanggal", Width: 12},
			{Title: "Kategori", Width: 20},
			{Title: "Pinjaman", Width: 16},
			{Title: "Tenor", Width: 6},
			{Title: "Angsuran", Width: 14},
			{Title: "Dibayar", Width: 16},
			{Title: "Sisa", Width: 16},
			{Title: "Status", Width: 8},
		}, 12),
		schedule: newTable([]table.Column{
			{Title: "Ke", Width: 4},
			{Title: "Jatuh Tempo", Width: 12},
			{Title: "Jumlah", Width: 14},
			{Title: "Status", Width: 12},
			{Title: "Tgl Bayar", Width: 12},
			{Title: "Pokok", Width: 14},
			{Title: "Jasa", Width: 14},
		}, 14),
	}
	m.form = memberForm()

	return m
}

func memberForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("anggota_id").
				Title("ID Anggota").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("member id cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoansModel) Title() string { return "Member Loans" }
func (m LoansModel) ShortHelp() string {
	switch m.state {
	case loansStateList:
		return "Esc: back | Enter: schedule | r: refresh"
	case loansStateSchedule:
		return "Esc: back to loans"
	}
	return "Enter: search | Esc: back"
}

func (m LoansModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoansModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLoansMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.loans
		m.total = loan.TotalOutstanding(msg.loans)
		m.refreshLoans()
		return m, nil

	case loadScheduleMsg:
		m.loading = false
		m.err = msg.err
		m.remaining = msg.remaining
		m.refreshSchedule(msg.schedule)
		m.state = loansStateSchedule
		return m, nil

	case tea.WindowSizeMsg:
		m.loans.SetHeight(msg.Height - 12)
		m.schedule.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case loansStateMember:
		return m.updateMember(msg)
	case loansStateList:
		return m.updateList(msg)
	case loansStateSchedule:
		return m.updateSchedule(msg)
	}

	return m, nil
}

func (m LoansModel) updateMember(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.anggotaID = strings.TrimSpace(m.form.GetString("anggota_id"))
	m.state = loansStateList
	m.loading = true

	return m, m.loadLoansCmd()
}

func (m LoansModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.err = nil
			m.state = loansStateMember
			m.form = memberForm()
			return m, m.form.Init()
		case "r":
			m.loading = true
			return m, m.loadLoansCmd()
		case "enter":
			idx := m.loans.Cursor()
			if idx < 0 || idx >= len(m.items) {
				return m, nil
			}
			m.selected = m.items[idx]
			m.loading = true
			return m, m.loadScheduleCmd(m.selected.ID)
		}
	}

	var cmd tea.Cmd
	m.loans, cmd = m.loans.Update(msg)
	return m, cmd
}

func (m LoansModel) updateSchedule(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.err = nil
		m.state = loansStateList
		return m, nil
	}

	var cmd tea.Cmd
	m.schedule, cmd = m.schedule.Update(msg)
	return m, cmd
}

func (m LoansModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading loans...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var content string

	switch m.state {
	case loansStateMember:
		content = "Member Loans\n\n" + m.form.View()

	case loansStateList:
		header := fmt.Sprintf("Anggota %s | %d pinjaman | Total sisa: %s",
			activeStyle(m.anggotaID), len(m.items), activeStyle(FormatAmount(m.total)))
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			boxed(m.loans.View()),
		)

	case loansStateSchedule:
		d := m.selected
		header := fmt.Sprintf("%s | %s | %d bulan @ %s%% | sisa %s | %d angsuran tersisa",
			activeStyle(d.ID), d.Kategori, d.Tenor, strconv.FormatFloat(d.SukuBunga, 'f', -1, 64),
			FormatAmount(d.SisaPinjaman), m.remaining)
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			boxed(m.schedule.View()),
		)
	}

	help := lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + help)
}

func (m *LoansModel) refreshLoans() {
	rows := make([]table.Row, 0, len(m.items))
	for _, d := range m.items {
		rows = append(rows, table.Row{
			FormatDate(d.Tanggal),
			d.Kategori,
			FormatAmount(d.JumlahPinjaman),
			strconv.Itoa(d.Tenor),
			FormatAmount(d.AngsuranPerBulan),
			FormatAmount(d.TotalDibayar),
			FormatAmount(d.SisaPinjaman),
			string(d.Status),
		})
	}
	m.loans.SetRows(rows)
}

func (m *LoansModel) refreshSchedule(schedule []loan.Installment) {
	rows := make([]table.Row, 0, len(schedule))
	for _, inst := range schedule {
		paidAt := "-"
		if inst.TanggalBayar != nil {
			paidAt = FormatDate(*inst.TanggalBayar)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(inst.AngsuranKe),
			FormatDate(inst.JatuhTempo),
			FormatAmount(inst.Jumlah),
			string(inst.Status),
			paidAt,
			FormatAmount(inst.NominalPokok),
			FormatAmount(inst.NominalJasa),
		})
	}
	m.schedule.SetRows(rows)
	m.schedule.SetCursor(0)
}

// Messages

type loadLoansMsg struct {
	loans []*loan.Details
	err   error
}

func (m LoansModel) loadLoansCmd() tea.Cmd {
	anggotaID := m.anggotaID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		loans, err := m.loanService.ListMemberLoans(ctx, anggotaID)
		return loadLoansMsg{loans: loans, err: err}
	}
}

type loadScheduleMsg struct {
	schedule  []loan.Installment
	remaining int
	err       error
}

func (m LoansModel) loadScheduleCmd(loanID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		schedule, err := m.loanService.GenerateInstallmentSchedule(ctx, loanID)
		if err != nil {
			return loadScheduleMsg{err: err}
		}

		remaining, err := m.loanService.CalculateRemainingInstallments(ctx, loanID)
		return loadScheduleMsg{schedule: schedule, remaining: remaining, err: err}
	}
}
