package analytics

import (
	"errors"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultExplorerURL is the block explorer used for address and transaction links.
const DefaultExplorerURL = "https://basescan.org"

// ErrEmptyAddress is returned when a wallet query has no address.
var ErrEmptyAddress = errors.New("wallet address is required")

// shortAddressMinLen is the shortest address that gets abbreviated.
const shortAddressMinLen = 12

// NormalizeAddress trims surrounding whitespace and rejects an empty address.
// No further validation is done: the backend decides what a valid address is.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrEmptyAddress
	}
	return address, nil
}

// LooksLikeEVMAddress reports whether address is a 20-byte hex address.
// Callers use it for warnings only.
func LooksLikeEVMAddress(address string) bool {
	return common.IsHexAddress(address)
}

// ChecksumAddress returns the EIP-55 form of an EVM address, or address unchanged
// when it is not one.
func ChecksumAddress(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ShortAddress abbreviates an address as 0x1234...abcd.
func ShortAddress(address string) string {
	if len(address) < shortAddressMinLen {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// Explorer builds block explorer links.
type Explorer struct {
	BaseURL string
}

// NewExplorer returns an Explorer for baseURL, falling back to DefaultExplorerURL.
func NewExplorer(baseURL string) Explorer {
	if baseURL == "" {
		baseURL = DefaultExplorerURL
	}
	return Explorer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// AddressURL links to an address page.
func (e Explorer) AddressURL(address string) string {
	return e.BaseURL + "/address/" + url.PathEscape(address)
}

// TxURL links to a transaction page. Empty hashes yield an empty link.
func (e Explorer) TxURL(hash string) string {
	if hash == "" {
		return ""
	}
	return e.BaseURL + "/tx/" + url.PathEscape(hash)
}
