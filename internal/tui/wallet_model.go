package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/backend"
	"github.com/rshade/cypherdash/internal/resultset"
	listview "github.com/rshade/cypherdash/internal/tui/list"
)

// WalletErrorMessage is the banner shown when a wallet analysis fetch fails.
const WalletErrorMessage = "Failed to analyze wallet. Please try again."

// Wallet table column widths.
const (
	walColWidthAddress = 42
	walColWidthLabel   = 22
	walColWidthType    = 9
	walColWidthTxCount = 8
	walColWidthLast    = 16
	walColWidthHash    = 13
	lastInteractionFmt = "2006-01-02 15:04"
)

// walletSortKeys maps the digit keys 1..6 to counterparty fields.
//
//nolint:gochecknoglobals // Fixed lookup table.
var walletSortKeys = map[string]string{
	"1": analytics.FieldAddress,
	"2": analytics.FieldLabel,
	"3": analytics.FieldType,
	"4": analytics.FieldTxCount,
	"5": analytics.FieldLastInteraction,
	"6": analytics.FieldLastTxHash,
}

// WalletFetcher fetches the counterparties of address. It should honour ctx cancellation.
type WalletFetcher func(ctx context.Context, address string) ([]analytics.Counterparty, error)

// walletLoadedMsg carries a fetch result back to Update with the ticket it was issued under.
type walletLoadedMsg struct {
	ticket backend.Ticket
	rows   []analytics.Counterparty
	err    error
}

// WalletOptions configures a WalletModel.
type WalletOptions struct {
	// Address, when set, is fetched as soon as the program starts.
	Address  string
	PageSize int
	Theme    Theme
	Explorer analytics.Explorer
	Logger   zerolog.Logger
}

// WalletModel is the interactive wallet analysis dashboard: an address input,
// a paged counterparty table driven by a result-set engine, and a detail view.
type WalletModel struct {
	ctx     context.Context
	fetch   WalletFetcher
	latest  *backend.Latest
	engine  *resultset.Engine[analytics.Counterparty]
	logger  zerolog.Logger
	theme   Theme
	explore analytics.Explorer

	state       ViewState
	address     string
	shown       string
	cancelFetch context.CancelFunc
	err         error
	addrInput   textinput.Model
	filterInput textinput.Model
	showFilter  bool
	list        *listview.VirtualListModel[analytics.Counterparty]
	loading     *LoadingState

	width  int
	height int
}

// NewWalletModel creates the wallet dashboard.
func NewWalletModel(ctx context.Context, fetch WalletFetcher, opts WalletOptions) *WalletModel {
	if opts.Theme.Name == "" {
		opts.Theme = LightTheme()
	}
	if opts.Explorer.BaseURL == "" {
		opts.Explorer = analytics.NewExplorer("")
	}

	m := &WalletModel{
		ctx:         ctx,
		fetch:       fetch,
		latest:      &backend.Latest{},
		engine:      analytics.NewCounterpartyEngine(opts.PageSize),
		logger:      opts.Logger,
		theme:       opts.Theme,
		explore:     opts.Explorer,
		state:       ViewStateInput,
		address:     strings.TrimSpace(opts.Address),
		addrInput:   newAddressInput(),
		filterInput: newFilterInput("Filter counterparties..."),
		loading:     NewLoadingState("Analyzing wallet..."),
		width:       defaultWidth,
		height:      defaultHeight,
	}
	m.addrInput.SetValue(m.address)
	m.addrInput.Focus()
	m.list = listview.NewVirtualListModel([]analytics.Counterparty(nil), m.listHeight(), m.width, m.renderRow)
	return m
}

func newAddressInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "0x..."
	ti.CharLimit = filterInputCharLimit
	ti.Width = addressInputWidth
	return ti
}

func newFilterInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

// Init starts the deep-linked fetch, if any.
func (m *WalletModel) Init() tea.Cmd {
	if m.address != "" {
		return m.startFetch(m.address)
	}
	return textinput.Blink
}

// State returns the current screen.
func (m *WalletModel) State() ViewState {
	return m.state
}

// Engine exposes the result-set engine backing the table.
func (m *WalletModel) Engine() *resultset.Engine[analytics.Counterparty] {
	return m.engine
}

// Theme returns the active theme.
func (m *WalletModel) Theme() Theme {
	return m.theme
}

// Update handles messages and updates the model state.
func (m *WalletModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetHeight(m.listHeight())
		return m, nil
	case walletLoadedMsg:
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
		if m.showFilter {
			return m.handleFilterInput(msg)
		}
		switch m.state {
		case ViewStateInput, ViewStateError:
			return m.handleAddressInput(msg)
		case ViewStateList:
			return m.handleListKey(msg)
		case ViewStateDetail:
			return m.handleDetailKey(msg)
		case ViewStateLoading:
			return m.handleLoadingKey(msg)
		case ViewStateQuitting:
			return m, nil
		}
	}

	return m.forwardToInput(msg)
}

// forwardToInput passes non-key messages such as cursor blinks to the focused input.
func (m *WalletModel) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.showFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
	case m.state == ViewStateInput || m.state == ViewStateError:
		m.addrInput, cmd = m.addrInput.Update(msg)
	}
	return m, cmd
}

func (m *WalletModel) startFetch(address string) tea.Cmd {
	m.stopFetch()
	ticket := m.latest.Begin(address)
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelFetch = cancel
	m.address = address
	m.err = nil
	m.state = ViewStateLoading
	m.addrInput.Blur()
	m.loading.SetMessage(fmt.Sprintf("Analyzing %s...", analytics.ShortAddress(address)))

	m.logger.Debug().
		Str("component", "tui").
		Str("operation", "wallet_fetch").
		Str("address", address).
		Uint64("ticket", ticket.Seq).
		Msg("starting wallet analysis")

	fetch := m.fetch
	return tea.Batch(m.loading.Init(), func() tea.Msg {
		rows, err := fetch(ctx, address)
		return walletLoadedMsg{ticket: ticket, rows: rows, err: err}
	})
}

// stopFetch cancels the in-flight analysis, if any.
func (m *WalletModel) stopFetch() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// abandonFetch gives up on the in-flight analysis. A response that still
// arrives carries a stale ticket and is dropped.
func (m *WalletModel) abandonFetch() {
	m.stopFetch()
	m.latest.Begin("")
	m.address = m.shown
	m.logger.Debug().
		Str("component", "tui").
		Str("operation", "wallet_fetch").
		Msg("wallet analysis abandoned")
}

func (m *WalletModel) handleLoaded(msg walletLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.latest.Accept(msg.ticket) {
		m.logger.Debug().
			Str("component", "tui").
			Str("address", msg.ticket.Key).
			Str("current_address", m.latest.CurrentKey()).
			Uint64("ticket", msg.ticket.Seq).
			Msg("discarding superseded wallet analysis")
		return m, nil
	}
	m.stopFetch()

	if msg.err != nil {
		m.logger.Warn().
			Str("component", "tui").
			Str("address", m.address).
			Err(msg.err).
			Msg("wallet analysis failed")
		m.err = msg.err
		m.shown = ""
		m.engine.Load(nil)
		m.refreshPage()
		m.state = ViewStateError
		m.addrInput.Focus()
		return m, textinput.Blink
	}

	m.engine.Load(msg.rows)
	m.shown = m.address
	m.filterInput.SetValue("")
	m.refreshPage()
	m.state = ViewStateList
	return m, nil
}

// handleLoadingKey lets the user leave a slow analysis: "a" abandons it for
// another address, esc goes back to the previous results.
func (m *WalletModel) handleLoadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyAddress:
		m.abandonFetch()
		m.state = ViewStateInput
		m.addrInput.Focus()
		return m, textinput.Blink
	case keyEsc:
		m.abandonFetch()
		if m.engine.Len() > 0 {
			m.state = ViewStateList
			return m, nil
		}
		m.state = ViewStateInput
		m.addrInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *WalletModel) handleAddressInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		address, err := analytics.NormalizeAddress(m.addrInput.Value())
		if err != nil {
			return m, nil
		}
		return m, m.startFetch(address)
	case keyEsc:
		// Back to the table only if there is one to go back to.
		if m.state == ViewStateInput && m.engine.Len() > 0 {
			m.addrInput.Blur()
			m.state = ViewStateList
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.addrInput, cmd = m.addrInput.Update(msg)
	return m, cmd
}

func (m *WalletModel) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter, keyEsc:
		m.showFilter = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if v := m.filterInput.Value(); v != m.engine.State().FilterText {
		m.engine.SetFilterText(v)
		m.refreshPage()
	}
	return m, cmd
}

//nolint:cyclop // One branch per key binding.
func (m *WalletModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if field, ok := walletSortKeys[key]; ok {
		selected, hasSelection := m.SelectedCounterparty()
		m.engine.SetSort(field)
		if hasSelection {
			m.followSelection(m.engine.Schema().IdentityOf(selected))
		} else {
			m.refreshPage()
		}
		return m, nil
	}

	switch key {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keySlash:
		m.showFilter = true
		m.filterInput.SetValue(m.engine.State().FilterText)
		m.filterInput.Focus()
		return m, textinput.Blink
	case keyEsc:
		if m.engine.State().FilterText != "" {
			m.filterInput.SetValue("")
			m.engine.SetFilterText("")
			m.refreshPage()
		}
		return m, nil
	case keyLeft, keyH:
		m.engine.PrevPage()
		m.refreshPage()
		return m, nil
	case keyRight, keyL:
		m.engine.NextPage()
		m.refreshPage()
		return m, nil
	case keyPlus, keyMinus:
		step := 1
		if key == keyMinus {
			step = -1
		}
		// Sizes come from pageSizes, so SetPageSize cannot fail here.
		_ = m.engine.SetPageSize(nextPageSize(m.engine.State().PageSize, step))
		m.refreshPage()
		return m, nil
	case keyTheme:
		m.theme = m.theme.Toggle()
		return m, nil
	case keyEnter:
		if m.list.GetSelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	case keyAddress:
		m.state = ViewStateInput
		m.addrInput.Focus()
		return m, textinput.Blink
	case keyRefresh:
		if m.address != "" {
			return m, m.startFetch(m.address)
		}
		return m, nil
	}

	m.list.Update(msg)
	return m, nil
}

func (m *WalletModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc, "backspace":
		m.state = ViewStateList
	case keyTheme:
		m.theme = m.theme.Toggle()
	}
	return m, nil
}

// refreshPage recomputes the visible page and hands it to the list.
func (m *WalletModel) refreshPage() {
	m.list.SetItems(m.engine.VisiblePage().Items)
}

// followSelection moves to the page holding the counterparty with identity id
// and puts the cursor on it. Without a match it just refreshes the page.
func (m *WalletModel) followSelection(id string) {
	schema := m.engine.Schema()
	for i, c := range m.engine.Filtered() {
		if schema.IdentityOf(c) != id {
			continue
		}
		m.engine.SetPageIndex(i/m.engine.State().PageSize + 1)
		page := m.engine.VisiblePage()
		m.list.SetItems(page.Items)
		m.list.SetSelected(i - page.Offset())
		return
	}
	m.refreshPage()
}

func (m *WalletModel) listHeight() int {
	return max(m.height-chromeHeight, minHeight)
}

// SelectedCounterparty returns the row under the cursor.
func (m *WalletModel) SelectedCounterparty() (analytics.Counterparty, bool) {
	if c := m.list.GetSelectedItem(); c != nil {
		return *c, true
	}
	return analytics.Counterparty{}, false
}

// View renders the current view.
func (m *WalletModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateInput:
		return m.renderInput("")
	case ViewStateError:
		return m.renderInput(m.theme.Error.Render(WalletErrorMessage))
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", RenderLoading(m.loading, m.theme), "",
			m.theme.Help.Render("[a] Another address  [esc] Cancel  [ctrl+c] Quit"))
	case ViewStateDetail:
		if c, ok := m.SelectedCounterparty(); ok {
			return m.renderDetail(c)
		}
		return m.renderList()
	case ViewStateList:
		return m.renderList()
	default:
		return ""
	}
}

func (m *WalletModel) renderTitle() string {
	title := m.theme.Title.Render("cypherdash · Wallet Analysis")
	if m.address == "" {
		return title
	}
	return title + "  " + m.theme.Subtle.Render(m.address)
}

func (m *WalletModel) renderInput(banner string) string {
	parts := []string{m.renderTitle(), ""}
	if banner != "" {
		parts = append(parts, banner, "")
	}
	parts = append(parts,
		m.theme.Label.Render("Wallet address: ")+m.addrInput.View(),
		"",
		m.theme.Help.Render("[enter] Analyze  [esc] Back  [ctrl+c] Quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *WalletModel) renderList() string {
	page := m.engine.VisiblePage()
	st := m.engine.State()

	status := fmt.Sprintf("Page %d/%d · %s counterparties · page size %d",
		page.PageIndex, page.TotalPages, analytics.FormatCount(page.FilteredCount), page.PageSize)
	if st.SortKey != "" {
		status += fmt.Sprintf(" · sort %s %s", st.SortKey, st.SortDirection)
	}
	if st.FilterText != "" {
		status += fmt.Sprintf(" · filter %q", st.FilterText)
	}

	var body string
	switch {
	case m.engine.Len() == 0:
		body = m.theme.Info.Render("No counterparties found for this wallet.")
	case page.FilteredCount == 0:
		body = m.theme.Info.Render("No counterparties match the filter.")
	default:
		body = m.theme.TableHeader.Render(m.renderHeader(st)) + "\n" + m.list.View()
	}

	parts := []string{m.renderTitle(), m.theme.Label.Render(status), "", body}
	if m.showFilter {
		parts = append(parts, "", "Filter: "+m.filterInput.View())
	}
	parts = append(parts, "", m.theme.Help.Render(
		"[/] Filter  [1-6] Sort  [←→/hl] Page  [+/-] Page size  [↑↓] Move  [enter] Details  "+
			"[a] Address  [r] Refresh  [t] Theme  [q] Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *WalletModel) renderHeader(st resultset.ViewState) string {
	title := func(field, name string) string {
		if st.SortKey != field {
			return name
		}
		if st.SortDirection == resultset.Descending {
			return name + " ▼"
		}
		return name + " ▲"
	}
	return fmt.Sprintf("%-*s  %-*s  %-*s  %*s  %-*s  %-*s",
		walColWidthAddress, title(analytics.FieldAddress, "1 Address"),
		walColWidthLabel, title(analytics.FieldLabel, "2 Label"),
		walColWidthType, title(analytics.FieldType, "3 Type"),
		walColWidthTxCount, title(analytics.FieldTxCount, "4 Txs"),
		walColWidthLast, title(analytics.FieldLastInteraction, "5 Last seen"),
		walColWidthHash, title(analytics.FieldLastTxHash, "6 Last tx"),
	)
}

func (m *WalletModel) renderRow(c analytics.Counterparty, selected bool) string {
	row := fmt.Sprintf("%-*s  %-*s  %-*s  %*s  %-*s  %-*s",
		walColWidthAddress, truncate(c.Address, walColWidthAddress),
		walColWidthLabel, truncate(c.DisplayLabel(), walColWidthLabel),
		walColWidthType, truncate(string(c.Type), walColWidthType),
		walColWidthTxCount, analytics.FormatCount(c.TxCount),
		walColWidthLast, formatLastInteraction(c),
		walColWidthHash, orDash(analytics.ShortAddress(c.LastTxHash)),
	)
	if selected {
		return m.theme.TableSelected.Render(row)
	}
	return row
}

func (m *WalletModel) renderDetail(c analytics.Counterparty) string {
	line := func(label, value string) string {
		return m.theme.Label.Render(fmt.Sprintf("%-18s", label)) + m.theme.Value.Render(value)
	}

	lines := []string{
		m.theme.Header.Render("COUNTERPARTY DETAIL"),
		line("Address:", c.Address),
	}
	if analytics.LooksLikeEVMAddress(c.Address) {
		lines = append(lines, line("Checksum:", analytics.ChecksumAddress(c.Address)))
	}
	lines = append(lines,
		line("Label:", c.DisplayLabel()),
		line("Type:", string(c.Type)),
		line("Transactions:", analytics.FormatCount(c.TxCount)),
		line("Last interaction:", formatLastInteraction(c)),
		line("Last tx hash:", orDash(c.LastTxHash)),
		"",
		line("Explorer:", m.explore.AddressURL(c.Address)),
	)
	if url := m.explore.TxURL(c.LastTxHash); url != "" {
		lines = append(lines, line("Last tx:", url))
	}

	content := m.theme.Box.Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", content, "",
		m.theme.Help.Render("[esc] Back to list  [t] Theme  [q] Quit"))
}

func formatLastInteraction(c analytics.Counterparty) string {
	if ts, ok := c.LastInteractionTime(); ok {
		return ts.Format(lastInteractionFmt)
	}
	return orDash(c.LastInteraction)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
