package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultBufferSize is the number of extra rows rendered above and below the viewport.
const defaultBufferSize = 2

// RenderFunc renders one item. selected is true for the row under the cursor.
type RenderFunc[T any] func(item T, selected bool) string

// VirtualListModel is a cursor over items with a viewport that follows it.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]

	selected    int
	visibleFrom int
	visibleTo   int // exclusive

	height     int
	width      int
	bufferSize int
}

// NewVirtualListModel creates a list over items with a viewport of height rows.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		height:     max(height, 1),
		width:      width,
		bufferSize: defaultBufferSize,
	}
	m.updateVisibleRange()
	return m
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update moves the cursor on navigation keys and tracks the window size.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.SetHeight(msg.Height)
	}
	return m, nil
}

func (m *VirtualListModel[T]) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		m.SetSelected(m.selected - 1)
	case "down", "j":
		m.SetSelected(m.selected + 1)
	case "pgup":
		m.SetSelected(m.selected - m.height)
	case "pgdown":
		m.SetSelected(m.selected + m.height)
	case "home", "g":
		m.SetSelected(0)
	case "end", "G":
		m.SetSelected(len(m.items) - 1)
	}
}

// updateVisibleRange keeps the cursor inside [visibleFrom, visibleTo), scrolling
// by as little as possible.
func (m *VirtualListModel[T]) updateVisibleRange() {
	n := len(m.items)
	if n == 0 {
		m.visibleFrom, m.visibleTo = 0, 0
		return
	}

	from := m.visibleFrom
	if m.selected < from {
		from = m.selected
	}
	if m.selected >= from+m.height {
		from = m.selected - m.height + 1
	}
	from = max(0, min(from, n-m.height))

	m.visibleFrom = from
	m.visibleTo = min(n, from+m.height)
}

// View renders the viewport plus the buffer rows on either side.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}

	from := max(0, m.visibleFrom-m.bufferSize)
	to := min(len(m.items), m.visibleTo+m.bufferSize)

	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// SetItems replaces the items and moves the cursor to the first row.
func (m *VirtualListModel[T]) SetItems(items []T) {
	m.items = items
	m.selected = 0
	m.visibleFrom = 0
	m.updateVisibleRange()
}

// SetHeight resizes the viewport.
func (m *VirtualListModel[T]) SetHeight(height int) {
	m.height = max(height, 1)
	m.updateVisibleRange()
}

// SetSelected moves the cursor, clamped to the item bounds.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	m.selected = max(0, min(index, len(m.items)-1))
	m.updateVisibleRange()
}

// ItemCount returns the number of items.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the cursor index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// VisibleFrom returns the first row of the viewport.
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.visibleFrom
}

// VisibleTo returns the row after the last row of the viewport.
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.visibleTo
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// GetSelectedItem returns the item under the cursor, or nil for an empty list.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.selected]
}
