package tui

// ViewState is the screen a model is showing.
type ViewState int

const (
	// ViewStateInput waits for the user to enter a query (address or dates).
	ViewStateInput ViewState = iota
	// ViewStateLoading shows a spinner while a fetch is in flight.
	ViewStateLoading
	// ViewStateList shows the current page of results.
	ViewStateList
	// ViewStateDetail shows the selected row.
	ViewStateDetail
	// ViewStateError shows the fetch failure banner above the input.
	ViewStateError
	// ViewStateQuitting renders nothing while the program exits.
	ViewStateQuitting
)

func (s ViewState) String() string {
	switch s {
	case ViewStateInput:
		return "input"
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateError:
		return "error"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Layout defaults used before the first WindowSizeMsg arrives.
const (
	defaultWidth         = 120
	defaultHeight        = 30
	minHeight            = 5
	chromeHeight         = 10
	filterInputCharLimit = 100
	filterInputWidth     = 40
	addressInputWidth    = 46
	dateInputWidth       = 12
)
