package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/backend"
	"github.com/rshade/cypherdash/internal/chart"
	"github.com/rshade/cypherdash/internal/resultset"
)

// VolumeErrorMessage is the banner shown when a volume fetch fails.
const VolumeErrorMessage = "Failed to load volume data. Please try again."

const (
	volColWidthPeriod = 14
	volColWidthUSD    = 18
	volBarsMinWidth   = 20
	volBarsChrome     = 36
)

// granularityKeys maps the digit keys 1..3 to a series.
//
//nolint:gochecknoglobals // Fixed lookup table.
var granularityKeys = map[string]analytics.Granularity{
	"1": analytics.Daily,
	"2": analytics.Weekly,
	"3": analytics.Monthly,
}

// VolumeFetcher fetches the volume report for q. It should honour ctx cancellation.
type VolumeFetcher func(ctx context.Context, q analytics.VolumeQuery) (analytics.VolumeReport, error)

type volumeLoadedMsg struct {
	ticket backend.Ticket
	report analytics.VolumeReport
	err    error
}

// VolumeOptions configures a VolumeModel.
type VolumeOptions struct {
	Query       analytics.VolumeQuery
	Granularity analytics.Granularity
	Theme       Theme
	Logger      zerolog.Logger
}

// VolumeModel is the interactive trading volume dashboard: a date range, one
// series at a time as a table or as bars, and last-request-wins refetching.
type VolumeModel struct {
	ctx    context.Context
	fetch  VolumeFetcher
	latest *backend.Latest
	engine *resultset.Engine[analytics.VolumePoint]
	logger zerolog.Logger
	theme  Theme

	state       ViewState
	query       analytics.VolumeQuery
	granularity analytics.Granularity
	report      analytics.VolumeReport
	hasReport   bool
	err         error
	inputErr    error

	fromInput textinput.Model
	toInput   textinput.Model
	focusTo   bool
	table     table.Model
	showBars  bool
	loading   *LoadingState

	width  int
	height int
}

// NewVolumeModel creates the volume dashboard. The first fetch starts in Init.
func NewVolumeModel(ctx context.Context, fetch VolumeFetcher, opts VolumeOptions) *VolumeModel {
	if opts.Theme.Name == "" {
		opts.Theme = LightTheme()
	}
	if opts.Query.From.IsZero() || opts.Query.To.IsZero() {
		opts.Query = analytics.DefaultVolumeQuery()
	}
	if opts.Granularity == "" || opts.Granularity == analytics.AllGranularities {
		opts.Granularity = analytics.Daily
	}

	m := &VolumeModel{
		ctx:         ctx,
		fetch:       fetch,
		latest:      &backend.Latest{},
		engine:      analytics.NewVolumeEngine(resultset.DefaultPageSize),
		logger:      opts.Logger,
		theme:       opts.Theme,
		state:       ViewStateLoading,
		query:       opts.Query,
		granularity: opts.Granularity,
		fromInput:   newDateInput(opts.Query.FromDate()),
		toInput:     newDateInput(opts.Query.ToDate()),
		loading:     NewLoadingState("Loading volume..."),
		width:       defaultWidth,
		height:      defaultHeight,
	}
	m.table = m.newTable()
	return m
}

func newDateInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = analytics.DateLayout
	ti.CharLimit = len(analytics.DateLayout)
	ti.Width = dateInputWidth
	ti.SetValue(value)
	return ti
}

func (m *VolumeModel) newTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Period", Width: volColWidthPeriod},
			{Title: "Volume (USD)", Width: volColWidthUSD},
		}),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	m.styleTable(&t)
	return t
}

func (m *VolumeModel) styleTable(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = m.theme.TableHeader
	s.Selected = m.theme.TableSelected
	t.SetStyles(s)
}

// Init starts the first fetch.
func (m *VolumeModel) Init() tea.Cmd {
	return m.startFetch(m.query)
}

// State returns the current screen.
func (m *VolumeModel) State() ViewState {
	return m.state
}

// Granularity returns the series being shown.
func (m *VolumeModel) Granularity() analytics.Granularity {
	return m.granularity
}

// Query returns the date range of the last fetch.
func (m *VolumeModel) Query() analytics.VolumeQuery {
	return m.query
}

// Engine exposes the result-set engine backing the table.
func (m *VolumeModel) Engine() *resultset.Engine[analytics.VolumePoint] {
	return m.engine
}

// Update handles messages and updates the model state.
func (m *VolumeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil
	case volumeLoadedMsg:
		return m.handleLoaded(msg)
	case spinner.TickMsg:
		if m.state != ViewStateLoading {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case tea.KeyMsg:
		if msg.String() == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		switch m.state {
		case ViewStateInput:
			return m.handleDateInput(msg)
		case ViewStateList:
			return m.handleListKey(msg)
		case ViewStateError:
			return m.handleErrorKey(msg)
		case ViewStateLoading, ViewStateDetail, ViewStateQuitting:
			return m, nil
		}
	}

	if m.state == ViewStateInput {
		return m.updateFocusedInput(msg)
	}
	return m, nil
}

func (m *VolumeModel) startFetch(q analytics.VolumeQuery) tea.Cmd {
	ticket := m.latest.Begin(q.Key())
	m.query = q
	m.err = nil
	m.state = ViewStateLoading
	m.loading.SetMessage(fmt.Sprintf("Loading volume %s to %s...", q.FromDate(), q.ToDate()))

	m.logger.Debug().
		Str("component", "tui").
		Str("operation", "volume_fetch").
		Str("range", q.Key()).
		Uint64("ticket", ticket.Seq).
		Msg("starting volume fetch")

	ctx, fetch := m.ctx, m.fetch
	return tea.Batch(m.loading.Init(), func() tea.Msg {
		report, err := fetch(ctx, q)
		return volumeLoadedMsg{ticket: ticket, report: report, err: err}
	})
}

func (m *VolumeModel) handleLoaded(msg volumeLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.latest.Accept(msg.ticket) {
		m.logger.Debug().
			Str("component", "tui").
			Str("range", msg.ticket.Key).
			Uint64("ticket", msg.ticket.Seq).
			Msg("discarding superseded volume fetch")
		return m, nil
	}

	if msg.err != nil {
		m.logger.Warn().
			Str("component", "tui").
			Str("range", m.query.Key()).
			Err(msg.err).
			Msg("volume fetch failed")
		m.err = msg.err
		m.report = analytics.VolumeReport{}
		m.hasReport = false
		m.loadSeries()
		m.state = ViewStateError
		return m, nil
	}

	m.report = msg.report
	m.hasReport = true
	m.loadSeries()
	m.state = ViewStateList
	return m, nil
}

// loadSeries feeds the current granularity into the engine and the table.
func (m *VolumeModel) loadSeries() {
	m.engine.Load(m.report.Series(m.granularity))
	m.refreshTable()
}

func (m *VolumeModel) refreshTable() {
	points := m.engine.Filtered()
	rows := make([]table.Row, len(points))
	for i, p := range points {
		rows[i] = table.Row{p.PeriodLabel, analytics.FormatUSD(p.USD)}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *VolumeModel) handleDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyTab, "shift+tab":
		m.setFocus(!m.focusTo)
		return m, textinput.Blink
	case keyEnter:
		q, err := analytics.NewVolumeQuery(m.fromInput.Value(), m.toInput.Value())
		if err != nil {
			m.inputErr = err
			return m, nil
		}
		m.inputErr = nil
		m.fromInput.Blur()
		m.toInput.Blur()
		return m, m.startFetch(q)
	case keyEsc:
		m.inputErr = nil
		m.fromInput.Blur()
		m.toInput.Blur()
		m.fromInput.SetValue(m.query.FromDate())
		m.toInput.SetValue(m.query.ToDate())
		if m.hasReport {
			m.state = ViewStateList
		} else {
			m.state = ViewStateError
		}
		return m, nil
	}
	return m.updateFocusedInput(msg)
}

func (m *VolumeModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focusTo {
		m.toInput, cmd = m.toInput.Update(msg)
	} else {
		m.fromInput, cmd = m.fromInput.Update(msg)
	}
	return m, cmd
}

func (m *VolumeModel) setFocus(to bool) {
	m.focusTo = to
	if to {
		m.fromInput.Blur()
		m.toInput.Focus()
	} else {
		m.toInput.Blur()
		m.fromInput.Focus()
	}
}

func (m *VolumeModel) editDates() tea.Cmd {
	m.state = ViewStateInput
	m.setFocus(false)
	return textinput.Blink
}

func (m *VolumeModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if g, ok := granularityKeys[key]; ok {
		m.granularity = g
		m.loadSeries()
		return m, nil
	}

	switch key {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyTab:
		m.granularity = nextGranularity(m.granularity)
		m.loadSeries()
		return m, nil
	case keySortUSD:
		m.engine.SetSort(analytics.FieldUSD)
		m.refreshTable()
		return m, nil
	case keySortDate:
		m.engine.SetSort(analytics.FieldPeriodLabel)
		m.refreshTable()
		return m, nil
	case keyBars:
		m.showBars = !m.showBars
		return m, nil
	case keyTheme:
		m.theme = m.theme.Toggle()
		m.styleTable(&m.table)
		return m, nil
	case keyEditDate:
		return m, m.editDates()
	case keyRefresh:
		return m, m.startFetch(m.query)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *VolumeModel) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRefresh, keyEnter:
		return m, m.startFetch(m.query)
	case keyEditDate:
		return m, m.editDates()
	case keyTheme:
		m.theme = m.theme.Toggle()
		m.styleTable(&m.table)
	}
	return m, nil
}

func nextGranularity(g analytics.Granularity) analytics.Granularity {
	all := analytics.Granularities()
	for i, candidate := range all {
		if candidate == g {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m *VolumeModel) tableHeight() int {
	return max(m.height-chromeHeight, minHeight)
}

// View renders the current view.
func (m *VolumeModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", RenderLoading(m.loading, m.theme))
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTitle(), "",
			m.theme.Error.Render(VolumeErrorMessage), "",
			m.theme.Help.Render("[r] Retry  [e] Edit dates  [t] Theme  [q] Quit"))
	case ViewStateInput:
		return m.renderDateInput()
	case ViewStateList, ViewStateDetail:
		return m.renderList()
	default:
		return ""
	}
}

func (m *VolumeModel) renderTitle() string {
	return m.theme.Title.Render("cypherdash · Trading Volume") + "  " +
		m.theme.Subtle.Render(m.query.FromDate()+" → "+m.query.ToDate())
}

func (m *VolumeModel) renderTabs() string {
	tabs := make([]string, 0, len(analytics.Granularities()))
	for i, g := range analytics.Granularities() {
		label := fmt.Sprintf("%d %s", i+1, g.Title())
		if g == m.granularity {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.InactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *VolumeModel) renderDateInput() string {
	parts := []string{
		m.renderTitle(), "",
		m.theme.Label.Render("From: ") + m.fromInput.View(),
		m.theme.Label.Render("To:   ") + m.toInput.View(),
	}
	if m.inputErr != nil {
		parts = append(parts, "", m.theme.Error.Render(m.inputErr.Error()))
	}
	parts = append(parts, "", m.theme.Help.Render("[tab] Switch field  [enter] Load  [esc] Cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *VolumeModel) renderList() string {
	points := m.engine.Filtered()
	st := m.engine.State()

	summary := fmt.Sprintf("Total %s across %s periods",
		analytics.FormatUSD(m.report.Total(m.granularity)), analytics.FormatCount(len(points)))
	if st.SortKey != "" {
		summary += fmt.Sprintf(" · sort %s %s", st.SortKey, st.SortDirection)
	}

	var body string
	switch {
	case len(points) == 0:
		body = m.theme.Info.Render("No volume recorded for this range.")
	case m.showBars:
		width := max(m.width-volBarsChrome, volBarsMinWidth)
		body = m.theme.Bar.Render(strings.TrimRight(chart.RenderBars(points, width), "\n"))
	default:
		body = m.table.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderTabs(),
		m.theme.Label.Render(summary),
		"",
		body,
		"",
		m.theme.Help.Render("[1-3/tab] Series  [s] Sort by USD  [p] Sort by period  [b] Bars  "+
			"[e] Dates  [r] Refresh  [t] Theme  [q] Quit"),
	)
}
