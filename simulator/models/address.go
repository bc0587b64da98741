package models

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// ss58Prefix is mixed into the checksum so that SS58 payloads cannot be
// confused with plain base58 data.
var ss58Prefix = []byte("SS58PRE")

// ValidateAddress checks an address against the format its chain expects:
// a 20-byte hex account for EVM chains, SS58 otherwise.
func ValidateAddress(address string, evm bool) error {
	if address == "" {
		return fmt.Errorf("address is empty")
	}
	if evm {
		return validateEVMAddress(address)
	}
	return ValidateSS58(address)
}

// ValidateSS58 decodes an SS58 address and verifies its checksum.
func ValidateSS58(address string) error {
	raw := base58.Decode(address)
	if len(raw) == 0 {
		return fmt.Errorf("not a base58 string")
	}
	// 1 or 2 prefix bytes, 32-byte account id, 2-byte checksum
	if len(raw) != 35 && len(raw) != 36 {
		return fmt.Errorf("unexpected payload length %d", len(raw))
	}

	body := raw[:len(raw)-2]
	sum := raw[len(raw)-2:]

	h, err := blake2b.New512(nil)
	if err != nil {
		return fmt.Errorf("checksum hasher: %w", err)
	}
	h.Write(ss58Prefix)
	h.Write(body)
	digest := h.Sum(nil)

	if digest[0] != sum[0] || digest[1] != sum[1] {
		return fmt.Errorf("checksum mismatch")
	}
	return nil
}

func validateEVMAddress(address string) error {
	if !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("missing 0x prefix")
	}
	hex := address[2:]
	if len(hex) != 40 {
		return fmt.Errorf("expected 20 hex bytes, got %d chars", len(hex))
	}
	for _, c := range hex {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("invalid hex character %q", c)
		}
	}
	return nil
}
