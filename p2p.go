package codex

import (
	"context"
	"fmt"
	"strings"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/codex-storage/go-codex/errors"
	"github.com/codex-storage/go-codex/internal/native"
)

// peerIDPrefixes are the encodings the native library accepts for
// peer identities.
var peerIDPrefixes = []string{
	"12D3KooW", // libp2p Ed25519
	"Qm",       // CIDv0
	"bafy",     // CIDv1 dag-pb
	"bafk",     // CIDv1 raw
}

// ValidatePeerID rejects peer ids the native library would fail on.
func ValidatePeerID(peerID string) error {
	if peerID == "" {
		return errors.InvalidParameter("peerId", "must not be empty")
	}
	if len(peerID) < 10 {
		return errors.InvalidParameter("peerId", "too short")
	}
	if len(peerID) > 100 {
		return errors.InvalidParameter("peerId", "too long")
	}
	for _, prefix := range peerIDPrefixes {
		if strings.HasPrefix(peerID, prefix) {
			return nil
		}
	}
	return errors.InvalidParameter("peerId", "unrecognized encoding")
}

// ValidateAddresses rejects address lists the native library would
// fail on. Each entry must be a parseable multiaddress.
func ValidateAddresses(addresses []string) error {
	if len(addresses) == 0 {
		return errors.InvalidParameter("addresses", "at least one address is required")
	}
	for i, addr := range addresses {
		if _, err := ma.NewMultiaddr(addr); err != nil {
			return errors.InvalidParameter(fmt.Sprintf("addresses[%d]", i), err.Error())
		}
	}
	return nil
}

// Connect dials a peer at the given multiaddresses. Both the peer id
// and the addresses are validated before any native call.
func (n *Node) Connect(ctx context.Context, peerID string, addresses []string) error {
	if err := ValidatePeerID(peerID); err != nil {
		return err
	}
	if err := ValidateAddresses(addresses); err != nil {
		return err
	}

	_, err := n.inner.call(ctx, "connect", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.Connect(c, peerID, addresses, op)
	})
	return err
}
