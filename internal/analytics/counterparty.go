package analytics

import (
	"strconv"
	"time"

	"github.com/rshade/cypherdash/internal/resultset"
)

// CounterpartyType classifies a counterparty address.
type CounterpartyType string

const (
	// TypeContract is an address with deployed code.
	TypeContract CounterpartyType = "contract"
	// TypeWallet is an externally owned account.
	TypeWallet CounterpartyType = "wallet"
)

// UnknownLabel is shown for counterparties the backend could not label.
const UnknownLabel = "Unknown"

// Counterparty field names, as used by --sort and the TUI sort keys.
const (
	FieldAddress         = "address"
	FieldLabel           = "label"
	FieldType            = "type"
	FieldTxCount         = "tx_count"
	FieldLastInteraction = "last_interaction"
	FieldLastTxHash      = "last_tx_hash"
)

// Counterparty is one row of a wallet analysis: an address the analyzed wallet
// transacted with and how often.
type Counterparty struct {
	Address         string           `json:"address"                    yaml:"address"`
	TxCount         int              `json:"tx_count"                   yaml:"tx_count"`
	Type            CounterpartyType `json:"type"                       yaml:"type"`
	Label           string           `json:"label,omitempty"            yaml:"label,omitempty"`
	LastInteraction string           `json:"last_interaction,omitempty" yaml:"last_interaction,omitempty"`
	LastTxHash      string           `json:"last_tx_hash,omitempty"     yaml:"last_tx_hash,omitempty"`
}

// DisplayLabel returns the label, or UnknownLabel when none was provided.
func (c Counterparty) DisplayLabel() string {
	if c.Label == "" {
		return UnknownLabel
	}
	return c.Label
}

// LastInteractionTime parses LastInteraction as unix seconds.
// The second return value is false when the field is missing or not a timestamp.
func (c Counterparty) LastInteractionTime() (time.Time, bool) {
	if c.LastInteraction == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(c.LastInteraction, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// CounterpartySchema declares the sortable and searchable fields of Counterparty.
//
//nolint:gochecknoglobals // Immutable schema shared by every wallet view.
var CounterpartySchema = resultset.MustSchema(FieldAddress,
	resultset.TextField(FieldAddress, func(c Counterparty) string { return c.Address }),
	resultset.OptionalTextField(FieldLabel, func(c Counterparty) string { return c.Label }),
	resultset.TextField(FieldType, func(c Counterparty) string { return string(c.Type) }),
	resultset.NumericField(FieldTxCount, func(c Counterparty) float64 { return float64(c.TxCount) }),
	resultset.OptionalTextField(FieldLastInteraction, func(c Counterparty) string { return c.LastInteraction }),
	resultset.OptionalTextField(FieldLastTxHash, func(c Counterparty) string { return c.LastTxHash }),
)

// Default wallet table ordering: busiest counterparties first.
const (
	DefaultCounterpartySortKey = FieldTxCount
	DefaultCounterpartySortDir = resultset.Descending
)

// NewCounterpartyEngine creates a result-set engine with the wallet table defaults.
func NewCounterpartyEngine(pageSize int) *resultset.Engine[Counterparty] {
	return resultset.NewEngine(CounterpartySchema,
		resultset.WithPageSize(pageSize),
		resultset.WithDefaultSort(DefaultCounterpartySortKey, DefaultCounterpartySortDir),
	)
}
