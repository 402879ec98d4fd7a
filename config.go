package codex

import (
	"encoding/json"
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/codex-storage/go-codex/errors"
)

// DefaultChunkSize is the transfer chunk size used when an upload or
// download does not specify one.
const DefaultChunkSize = 1 << 20

// Config describes a codex node. It is validated before any native
// call and handed to libcodex as JSON.
type Config struct {
	// DataDir is the node's repository directory. Required.
	DataDir string `json:"dataDir"`

	// ListenAddresses are the multiaddresses the node listens on.
	// Empty means the native defaults.
	ListenAddresses []string `json:"listenAddrs,omitempty"`

	// BootstrapNodes are multiaddresses of peers to join through.
	BootstrapNodes []string `json:"bootstrapNodes,omitempty"`

	// DiscoveryPort is the UDP port for the DHT. Zero means the
	// native default.
	DiscoveryPort int `json:"discPort,omitempty"`

	// MaxPeers caps concurrent peer connections. Zero means the
	// native default.
	MaxPeers int `json:"maxPeers,omitempty"`

	// StorageQuota limits the repository size in bytes. Zero means
	// unlimited.
	StorageQuota uint64 `json:"storageQuota,omitempty"`

	// BlockTTLSeconds is the retention period for unpinned blocks.
	BlockTTLSeconds uint64 `json:"blockTtl,omitempty"`

	// LogLevel sets the native library's log level (TRACE..FATAL).
	LogLevel string `json:"logLevel,omitempty"`
}

// Validate rejects configurations the native library would fail on,
// before any native call is made.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.ConfigInvalid("dataDir", "must not be empty")
	}
	if c.DiscoveryPort < 0 || c.DiscoveryPort > 65535 {
		return errors.ConfigInvalid("discPort", fmt.Sprintf("%d is not a valid port", c.DiscoveryPort))
	}
	if c.MaxPeers < 0 {
		return errors.ConfigInvalid("maxPeers", "must not be negative")
	}
	for i, addr := range c.ListenAddresses {
		if _, err := ma.NewMultiaddr(addr); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("listenAddrs[%d]", i), err.Error())
		}
	}
	for i, addr := range c.BootstrapNodes {
		if _, err := ma.NewMultiaddr(addr); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("bootstrapNodes[%d]", i), err.Error())
		}
	}
	return nil
}

// json returns the configuration as the JSON document libcodex ingests.
func (c Config) json() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(errors.StageConfig, errors.KindConfigInvalid, err, "encode configuration")
	}
	return string(raw), nil
}
