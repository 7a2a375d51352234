package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cypherdash/internal/analytics"
	"github.com/rshade/cypherdash/internal/resultset"
)

func sampleReport() analytics.VolumeReport {
	return analytics.VolumeReport{
		Daily: []analytics.VolumePoint{
			{PeriodLabel: "2025-03-01", USD: 120},
			{PeriodLabel: "2025-03-02", USD: 480},
			{PeriodLabel: "2025-03-03", USD: 60},
		},
		Weekly: []analytics.VolumePoint{
			{PeriodLabel: "2025-W09", USD: 660},
		},
		Monthly: []analytics.VolumePoint{
			{PeriodLabel: "2025-02", USD: 1000},
			{PeriodLabel: "2025-03", USD: 660},
		},
	}
}

type staticVolume struct {
	report  analytics.VolumeReport
	err     error
	queries []analytics.VolumeQuery
}

func (s *staticVolume) fetch(_ context.Context, q analytics.VolumeQuery) (analytics.VolumeReport, error) {
	s.queries = append(s.queries, q)
	return s.report, s.err
}

func loadedVolumeModel(t *testing.T) (*VolumeModel, *staticVolume) {
	t.Helper()
	src := &staticVolume{report: sampleReport()}
	m := NewVolumeModel(context.Background(), src.fetch, VolumeOptions{})
	deliver(m, m.Init())
	require.Equal(t, ViewStateList, m.State())
	return m, src
}

func TestVolumeModel_InitialFetchUsesDefaultRange(t *testing.T) {
	m, src := loadedVolumeModel(t)

	require.Len(t, src.queries, 1)
	assert.Equal(t, analytics.DefaultFromDate, src.queries[0].FromDate())
	assert.Equal(t, analytics.DefaultToDate, src.queries[0].ToDate())
	assert.Equal(t, analytics.Daily, m.Granularity())
	assert.Equal(t, 3, m.Engine().Len())

	view := m.View()
	assert.Contains(t, view, "2025-03-02")
	assert.Contains(t, view, "$480.00")
	assert.Contains(t, view, "Total $660.00 across 3 periods")
}

func TestVolumeModel_GranularityKeys(t *testing.T) {
	m, _ := loadedVolumeModel(t)

	m.Update(keyRunes("3"))
	assert.Equal(t, analytics.Monthly, m.Granularity())
	assert.Equal(t, 2, m.Engine().Len())

	m.Update(keyRunes("2"))
	assert.Equal(t, analytics.Weekly, m.Granularity())
	assert.Equal(t, 1, m.Engine().Len())

	m.Update(keyType(tea.KeyTab))
	assert.Equal(t, analytics.Monthly, m.Granularity())
	m.Update(keyType(tea.KeyTab))
	assert.Equal(t, analytics.Daily, m.Granularity())
}

func TestVolumeModel_SortByUSD(t *testing.T) {
	m, _ := loadedVolumeModel(t)

	m.Update(keyRunes("s"))
	st := m.Engine().State()
	assert.Equal(t, analytics.FieldUSD, st.SortKey)
	assert.Equal(t, resultset.Ascending, st.SortDirection)
	assert.InDelta(t, 60, m.Engine().Filtered()[0].USD, 0.001)

	m.Update(keyRunes("s"))
	assert.InDelta(t, 480, m.Engine().Filtered()[0].USD, 0.001)

	m.Update(keyRunes("p"))
	assert.Equal(t, "2025-03-01", m.Engine().Filtered()[0].PeriodLabel)
}

func TestVolumeModel_BarsToggle(t *testing.T) {
	m, _ := loadedVolumeModel(t)

	assert.NotContains(t, m.View(), "█")
	m.Update(keyRunes("b"))
	assert.Contains(t, m.View(), "█")
	m.Update(keyRunes("b"))
	assert.NotContains(t, m.View(), "█")
}

func TestVolumeModel_EditDates(t *testing.T) {
	m, src := loadedVolumeModel(t)

	m.Update(keyRunes("e"))
	require.Equal(t, ViewStateInput, m.State())

	m.fromInput.SetValue("2025-03-01")
	m.toInput.SetValue("2025-03-31")
	_, cmd := m.Update(keyType(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateLoading, m.State())

	deliver(m, cmd)
	require.Len(t, src.queries, 2)
	assert.Equal(t, "2025-03-01..2025-03-31", src.queries[1].Key())
	assert.Equal(t, "2025-03-01..2025-03-31", m.Query().Key())
	assert.Equal(t, ViewStateList, m.State())
}

func TestVolumeModel_InvalidDatesStayInInput(t *testing.T) {
	m, src := loadedVolumeModel(t)

	m.Update(keyRunes("e"))
	m.fromInput.SetValue("2025-12-31")
	m.toInput.SetValue("2025-01-01")
	_, cmd := m.Update(keyType(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.Equal(t, ViewStateInput, m.State())
	assert.Len(t, src.queries, 1)
	require.Error(t, m.inputErr)
	assert.ErrorIs(t, m.inputErr, analytics.ErrInvalidDateRange)

	m.Update(keyType(tea.KeyEsc))
	assert.Equal(t, ViewStateList, m.State())
	assert.Equal(t, analytics.DefaultFromDate, m.fromInput.Value())
}

func TestVolumeModel_TabSwitchesDateField(t *testing.T) {
	m, _ := loadedVolumeModel(t)
	m.Update(keyRunes("e"))
	assert.False(t, m.focusTo)

	m.Update(keyType(tea.KeyTab))
	assert.True(t, m.focusTo)
	assert.True(t, m.toInput.Focused())
	assert.False(t, m.fromInput.Focused())
}

func TestVolumeModel_StaleResponseDiscarded(t *testing.T) {
	m, _ := loadedVolumeModel(t)

	older, err := analytics.NewVolumeQuery("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	newer, err := analytics.NewVolumeQuery("2025-02-01", "2025-02-28")
	require.NoError(t, err)

	olderMsgs := collectMsgs(m.startFetch(older))
	newerMsgs := collectMsgs(m.startFetch(newer))

	newerReport := analytics.VolumeReport{Daily: []analytics.VolumePoint{{PeriodLabel: "2025-02-01", USD: 1}}}
	for _, msg := range newerMsgs {
		if lm, ok := msg.(volumeLoadedMsg); ok {
			lm.report = newerReport
			m.Update(lm)
		}
	}
	for _, msg := range olderMsgs {
		if lm, ok := msg.(volumeLoadedMsg); ok {
			m.Update(lm)
		}
	}

	assert.Equal(t, 1, m.Engine().Len())
	assert.Equal(t, newer.Key(), m.Query().Key())
}

func TestVolumeModel_FetchError(t *testing.T) {
	src := &staticVolume{err: errors.New("timeout")}
	m := NewVolumeModel(context.Background(), src.fetch, VolumeOptions{Granularity: analytics.Monthly})
	deliver(m, m.Init())

	assert.Equal(t, ViewStateError, m.State())
	assert.Contains(t, m.View(), VolumeErrorMessage)
	assert.Equal(t, 0, m.Engine().Len())

	src.err = nil
	src.report = sampleReport()
	_, cmd := m.Update(keyRunes("r"))
	deliver(m, cmd)
	assert.Equal(t, ViewStateList, m.State())
	assert.Equal(t, 2, m.Engine().Len())
}

func TestVolumeModel_EmptySeries(t *testing.T) {
	src := &staticVolume{}
	m := NewVolumeModel(context.Background(), src.fetch, VolumeOptions{})
	deliver(m, m.Init())

	assert.Equal(t, ViewStateList, m.State())
	assert.Contains(t, m.View(), "No volume recorded for this range.")
}

func TestVolumeModel_ThemeToggle(t *testing.T) {
	m, _ := loadedVolumeModel(t)
	m.Update(keyRunes("t"))
	assert.Equal(t, ThemeDark, m.theme.Name)
}

func TestThemeByName(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeByName("dark").Name)
	assert.Equal(t, ThemeLight, ThemeByName("light").Name)
	assert.Equal(t, ThemeLight, ThemeByName("neon").Name)
	assert.Equal(t, ThemeDark, LightTheme().Toggle().Name)
}

func TestViewState_String(t *testing.T) {
	assert.Equal(t, "loading", ViewStateLoading.String())
	assert.Equal(t, "error", ViewStateError.String())
	assert.Equal(t, "unknown", ViewState(99).String())
}
