package codex

import (
	"context"
	"strings"
	"testing"

	"github.com/codex-storage/go-codex/errors"
)

func TestValidatePeerID(t *testing.T) {
	tests := []struct {
		name    string
		peerID  string
		wantErr bool
	}{
		{name: "ed25519", peerID: "12D3KooWLcubmGU4kuQbZE2KYXjYmMQBJYGraftgB1cbLopgdHYr"},
		{name: "cidv0", peerID: "QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N"},
		{name: "cidv1 dag-pb", peerID: "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"},
		{name: "cidv1 raw", peerID: "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"},
		{name: "empty", peerID: "", wantErr: true},
		{name: "too short", peerID: "12D3Koo", wantErr: true},
		{name: "too long", peerID: "12D3KooW" + strings.Repeat("a", 100), wantErr: true},
		{name: "unknown encoding", peerID: "peer-0000000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePeerID(tt.peerID)
			if tt.wantErr && !errors.IsKind(err, errors.KindInvalidParameter) {
				t.Errorf("ValidatePeerID(%q) = %v, want invalid parameter", tt.peerID, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePeerID(%q) = %v", tt.peerID, err)
			}
		})
	}
}

func TestValidateAddresses(t *testing.T) {
	tests := []struct {
		name    string
		addrs   []string
		wantErr bool
	}{
		{name: "tcp", addrs: []string{"/ip4/192.168.1.10/tcp/8070"}},
		{name: "dns with peer", addrs: []string{"/dns4/node.example.com/tcp/8070/p2p/12D3KooWLcubmGU4kuQbZE2KYXjYmMQBJYGraftgB1cbLopgdHYr"}},
		{name: "several", addrs: []string{"/ip4/10.0.0.1/tcp/8070", "/ip6/::1/tcp/8070"}},
		{name: "empty list", addrs: nil, wantErr: true},
		{name: "malformed entry", addrs: []string{"/ip4/10.0.0.1/tcp/8070", "10.0.0.1:8070"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddresses(tt.addrs)
			if tt.wantErr && !errors.IsKind(err, errors.KindInvalidParameter) {
				t.Errorf("ValidateAddresses(%v) = %v, want invalid parameter", tt.addrs, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAddresses(%v) = %v", tt.addrs, err)
			}
		})
	}
}

func TestConnectValidatesBeforeNativeCall(t *testing.T) {
	lib := newFakeLib()
	ctx := context.Background()
	n := newTestNode(t, lib)
	defer n.Close(ctx)

	err := n.Connect(ctx, "bogus-id-12", []string{"/ip4/10.0.0.1/tcp/8070"})
	if !errors.IsKind(err, errors.KindInvalidParameter) {
		t.Fatalf("Connect() with bad peer id = %v", err)
	}
	err = n.Connect(ctx, "12D3KooWLcubmGU4kuQbZE2KYXjYmMQBJYGraftgB1cbLopgdHYr", nil)
	if !errors.IsKind(err, errors.KindInvalidParameter) {
		t.Fatalf("Connect() with no addresses = %v", err)
	}
	if got := lib.callCount("connect"); got != 0 {
		t.Errorf("rejected Connect issued %d native calls", got)
	}

	err = n.Connect(ctx, "12D3KooWLcubmGU4kuQbZE2KYXjYmMQBJYGraftgB1cbLopgdHYr",
		[]string{"/ip4/10.0.0.1/tcp/8070"})
	if err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	if got := lib.callCount("connect"); got != 1 {
		t.Errorf("connect issued %d times, want 1", got)
	}
}
