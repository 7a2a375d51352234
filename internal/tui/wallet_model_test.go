package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/resultset"
)

const testWallet = "0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad"

func counterparties(n int) []analytics.Counterparty {
	rows := make([]analytics.Counterparty, n)
	for i := range rows {
		rows[i] = analytics.Counterparty{
			Address:    fmt.Sprintf("0x%040d", i),
			TxCount:    (i*7)%n + 1,
			Type:       analytics.TypeWallet,
			LastTxHash: fmt.Sprintf("0x%064d", i),
		}
	}
	rows[0].Label = "Uniswap Router"
	rows[0].Type = analytics.TypeContract
	return rows
}

// staticWallet returns rows for every address and records what was asked for.
type staticWallet struct {
	rows  []analytics.Counterparty
	err   error
	calls []string
}

func (s *staticWallet) fetch(_ context.Context, address string) ([]analytics.Counterparty, error) {
	s.calls = append(s.calls, address)
	return s.rows, s.err
}

func loadedWalletModel(t *testing.T, n int) *WalletModel {
	t.Helper()
	src := &staticWallet{rows: counterparties(n)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: testWallet, PageSize: 10})
	deliver(m, m.Init())
	require.Equal(t, ViewStateList, m.State())
	return m
}

func TestWalletModel_DeepLinkFetchesImmediately(t *testing.T) {
	src := &staticWallet{rows: counterparties(23)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: "  " + testWallet + " ", PageSize: 10})

	cmd := m.Init()
	assert.Equal(t, ViewStateLoading, m.State())
	assert.Contains(t, m.View(), "Analyzing")

	deliver(m, cmd)
	assert.Equal(t, []string{testWallet}, src.calls)
	assert.Equal(t, ViewStateList, m.State())

	page := m.Engine().VisiblePage()
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 23, page.Items[0].TxCount)
	assert.Contains(t, m.View(), "Page 1/3")
}

func TestWalletModel_NoAddressStartsAtInput(t *testing.T) {
	src := &staticWallet{rows: counterparties(3)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{})

	m.Init()
	assert.Equal(t, ViewStateInput, m.State())

	// Enter with an empty address does nothing.
	_, cmd := m.Update(keyType(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, ViewStateInput, m.State())

	m.Update(keyRunes(testWallet))
	_, cmd = m.Update(keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateLoading, m.State())

	deliver(m, cmd)
	assert.Equal(t, []string{testWallet}, src.calls)
	assert.Equal(t, 3, m.Engine().Len())
}

func TestWalletModel_FetchErrorClearsResults(t *testing.T) {
	src := &staticWallet{rows: counterparties(5)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: testWallet})
	deliver(m, m.Init())
	require.Equal(t, 5, m.Engine().Len())

	src.err = errors.New("backend exploded")
	_, cmd := m.Update(keyRunes("r"))
	deliver(m, cmd)

	assert.Equal(t, ViewStateError, m.State())
	assert.Equal(t, 0, m.Engine().Len())
	assert.Contains(t, m.View(), WalletErrorMessage)
	assert.NotContains(t, m.View(), "backend exploded")

	// Retrying from the error screen re-submits the address.
	src.err = nil
	_, cmd = m.Update(keyType(tea.KeyEnter))
	deliver(m, cmd)
	assert.Equal(t, ViewStateList, m.State())
	assert.Equal(t, 5, m.Engine().Len())
}

func TestWalletModel_StaleResponseDiscarded(t *testing.T) {
	m := loadedWalletModel(t, 4)

	first := m.startFetch("0xaaaa")
	second := m.startFetch("0xbbbb")

	var firstMsgs, secondMsgs []tea.Msg
	firstMsgs = collectMsgs(first)
	secondMsgs = collectMsgs(second)

	// The newer request completes first; the older one must not overwrite it.
	for _, msg := range secondMsgs {
		if lm, ok := msg.(walletLoadedMsg); ok {
			lm.rows = counterparties(2)
			m.Update(lm)
		}
	}
	for _, msg := range firstMsgs {
		if lm, ok := msg.(walletLoadedMsg); ok {
			lm.rows = counterparties(9)
			m.Update(lm)
		}
	}

	assert.Equal(t, 2, m.Engine().Len())
	assert.Equal(t, ViewStateList, m.State())
}

// cancelAwareWallet answers per address and records whether the request
// context was already cancelled when the fetch ran.
type cancelAwareWallet struct {
	rows   map[string][]analytics.Counterparty
	ctxErr map[string]error
}

func (w *cancelAwareWallet) fetch(ctx context.Context, address string) ([]analytics.Counterparty, error) {
	w.ctxErr[address] = ctx.Err()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.rows[address], nil
}

func TestWalletModel_AnotherAddressWhileLoading(t *testing.T) {
	const other = "0x00000000000000000000000000000000000000bb"
	src := &cancelAwareWallet{
		rows: map[string][]analytics.Counterparty{
			testWallet: counterparties(9),
			other:      counterparties(3),
		},
		ctxErr: map[string]error{},
	}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: testWallet, PageSize: 10})

	slow := m.Init()
	require.Equal(t, ViewStateLoading, m.State())
	assert.Contains(t, m.View(), "[a] Another address")

	m.Update(keyRunes("a"))
	require.Equal(t, ViewStateInput, m.State())

	m.addrInput.SetValue(other)
	_, fast := m.Update(keyType(tea.KeyEnter))
	deliver(m, fast)
	require.Equal(t, ViewStateList, m.State())
	assert.Equal(t, 3, m.Engine().Len())

	// The first analysis finishes late; its context is gone and its result is dropped.
	deliver(m, slow)
	assert.ErrorIs(t, src.ctxErr[testWallet], context.Canceled)
	assert.Equal(t, ViewStateList, m.State())
	assert.Equal(t, 3, m.Engine().Len())
	assert.Contains(t, m.View(), other)
}

func TestWalletModel_EscCancelsRefresh(t *testing.T) {
	src := &staticWallet{rows: counterparties(4)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: testWallet})
	deliver(m, m.Init())
	require.Equal(t, ViewStateList, m.State())

	_, refresh := m.Update(keyRunes("r"))
	require.Equal(t, ViewStateLoading, m.State())

	m.Update(keyType(tea.KeyEsc))
	assert.Equal(t, ViewStateList, m.State())

	src.rows = counterparties(7)
	deliver(m, refresh)
	assert.Equal(t, 4, m.Engine().Len(), "cancelled refresh does not replace the table")
	assert.Contains(t, m.View(), testWallet)
}

func TestWalletModel_EscWhileFirstLoadReturnsToInput(t *testing.T) {
	src := &staticWallet{rows: counterparties(4)}
	m := NewWalletModel(context.Background(), src.fetch, WalletOptions{Address: testWallet})
	pending := m.Init()

	m.Update(keyType(tea.KeyEsc))
	assert.Equal(t, ViewStateInput, m.State())

	deliver(m, pending)
	assert.Equal(t, ViewStateInput, m.State())
	assert.Zero(t, m.Engine().Len())
}

func TestWalletModel_SortKeepsSelectedCounterparty(t *testing.T) {
	m := loadedWalletModel(t, 23)

	m.Update(keyType(tea.KeyDown))
	m.Update(keyType(tea.KeyDown))
	m.Update(keyType(tea.KeyDown))
	selected, ok := m.SelectedCounterparty()
	require.True(t, ok)
	require.Equal(t, 20, selected.TxCount)

	// tx_count is the default key, so this flips to ascending: 20 moves to row 20 of 23.
	m.Update(keyRunes("4"))
	require.Equal(t, resultset.Ascending, m.Engine().State().SortDirection)

	assert.Equal(t, 2, m.Engine().State().PageIndex)
	after, ok := m.SelectedCounterparty()
	require.True(t, ok)
	assert.Equal(t, selected.Address, after.Address)
	assert.Equal(t, 9, m.list.Selected())

	m.Update(keyRunes("1"))
	after, ok = m.SelectedCounterparty()
	require.True(t, ok)
	assert.Equal(t, selected.Address, after.Address)
}

func TestWalletModel_SortKeys(t *testing.T) {
	m := loadedWalletModel(t, 12)

	m.Update(keyRunes("1"))
	st := m.Engine().State()
	assert.Equal(t, analytics.FieldAddress, st.SortKey)
	assert.Equal(t, resultset.Ascending, st.SortDirection)
	assert.Contains(t, m.View(), "1 Address ▲")

	m.Update(keyRunes("1"))
	assert.Equal(t, resultset.Descending, m.Engine().State().SortDirection)

	m.Update(keyRunes("2"))
	st = m.Engine().State()
	assert.Equal(t, analytics.FieldLabel, st.SortKey)
	assert.Equal(t, resultset.Ascending, st.SortDirection)

	for key, field := range walletSortKeys {
		m.Update(keyRunes(key))
		assert.Equal(t, field, m.Engine().State().SortKey, key)
	}
}

func TestWalletModel_Paging(t *testing.T) {
	m := loadedWalletModel(t, 23)

	m.Update(keyType(tea.KeyRight))
	assert.Equal(t, 2, m.Engine().State().PageIndex)

	m.Update(keyRunes("l"))
	m.Update(keyRunes("l"))
	assert.Equal(t, 3, m.Engine().State().PageIndex)

	m.Update(keyRunes("h"))
	m.Update(keyType(tea.KeyLeft))
	m.Update(keyType(tea.KeyLeft))
	assert.Equal(t, 1, m.Engine().State().PageIndex)

	m.Update(keyType(tea.KeyRight))
	m.Update(keyRunes("+"))
	st := m.Engine().State()
	assert.Equal(t, 20, st.PageSize)
	assert.Equal(t, 1, st.PageIndex)

	m.Update(keyRunes("+"))
	m.Update(keyRunes("+"))
	assert.Equal(t, 50, m.Engine().State().PageSize)
	assert.Equal(t, 1, m.Engine().VisiblePage().TotalPages)

	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	m.Update(keyRunes("-"))
	assert.Equal(t, 5, m.Engine().State().PageSize)
}

func TestWalletModel_FilterInput(t *testing.T) {
	m := loadedWalletModel(t, 23)
	m.Update(keyType(tea.KeyRight))
	require.Equal(t, 2, m.Engine().State().PageIndex)

	m.Update(keyRunes("/"))
	m.Update(keyRunes("UNI"))
	st := m.Engine().State()
	assert.Equal(t, "UNI", st.FilterText)
	assert.Equal(t, 1, st.PageIndex)
	assert.Equal(t, 1, m.Engine().VisiblePage().FilteredCount)

	m.Update(keyType(tea.KeyEnter))
	assert.Contains(t, m.View(), `filter "UNI"`)

	// Esc in the list clears the filter.
	m.Update(keyType(tea.KeyEsc))
	assert.Empty(t, m.Engine().State().FilterText)
	assert.Equal(t, 23, m.Engine().VisiblePage().FilteredCount)
}

func TestWalletModel_FilterWithNoMatches(t *testing.T) {
	m := loadedWalletModel(t, 5)

	m.Update(keyRunes("/"))
	m.Update(keyRunes("zzzz"))
	m.Update(keyType(tea.KeyEnter))

	assert.Contains(t, m.View(), "No counterparties match the filter.")
	assert.Contains(t, m.View(), "Page 1/1")
}

func TestWalletModel_DetailView(t *testing.T) {
	m := loadedWalletModel(t, 5)
	m.Update(keyRunes("1"))

	m.Update(keyType(tea.KeyDown))
	selected, ok := m.SelectedCounterparty()
	require.True(t, ok)

	m.Update(keyType(tea.KeyEnter))
	assert.Equal(t, ViewStateDetail, m.State())

	view := m.View()
	assert.Contains(t, view, "COUNTERPARTY DETAIL")
	assert.Contains(t, view, "https://basescan.org/address/"+selected.Address)
	assert.Contains(t, view, "https://basescan.org/tx/"+selected.LastTxHash)

	m.Update(keyType(tea.KeyEsc))
	assert.Equal(t, ViewStateList, m.State())
}

func TestWalletModel_ThemeToggle(t *testing.T) {
	m := loadedWalletModel(t, 3)
	assert.Equal(t, ThemeLight, m.Theme().Name)

	m.Update(keyRunes("t"))
	assert.Equal(t, ThemeDark, m.Theme().Name)

	m.Update(keyRunes("t"))
	assert.Equal(t, ThemeLight, m.Theme().Name)
}

func TestWalletModel_AddressKeyReturnsToInput(t *testing.T) {
	m := loadedWalletModel(t, 3)

	m.Update(keyRunes("a"))
	assert.Equal(t, ViewStateInput, m.State())

	m.Update(keyType(tea.KeyEsc))
	assert.Equal(t, ViewStateList, m.State())
}

func TestWalletModel_Quit(t *testing.T) {
	m := loadedWalletModel(t, 3)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateQuitting, m.State())
	assert.Empty(t, m.View())
}

func TestNextPageSize(t *testing.T) {
	assert.Equal(t, 20, nextPageSize(10, 1))
	assert.Equal(t, 50, nextPageSize(50, 1))
	assert.Equal(t, 5, nextPageSize(10, -1))
	assert.Equal(t, 5, nextPageSize(5, -1))
	assert.Equal(t, 20, nextPageSize(15, 1))
	assert.Equal(t, 10, nextPageSize(15, -1))
}
