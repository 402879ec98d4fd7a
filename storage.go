package codex

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/codex-storage/go-codex/errors"
	"github.com/codex-storage/go-codex/internal/native"
)

// Manifest describes stored content, as reported by the native node.
type Manifest struct {
	CID         string `json:"cid"`
	TreeCID     string `json:"treeCid"`
	DatasetSize uint64 `json:"datasetSize"`
	BlockSize   uint64 `json:"blockSize"`
	Filename    string `json:"filename,omitempty"`
	Mimetype    string `json:"mimetype,omitempty"`
	Protected   bool   `json:"protected"`
}

// Manifest fetches the manifest for a stored content id.
func (n *Node) Manifest(ctx context.Context, cid string) (Manifest, error) {
	if cid == "" {
		return Manifest{}, errors.InvalidParameter("cid", "must not be empty")
	}
	raw, err := n.inner.call(ctx, "storage.fetch", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.StorageFetch(c, cid, op)
	})
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Manifest{}, errors.Wrap(errors.StageRuntime, errors.KindNativeFailure, err, "decode manifest")
	}
	return m, nil
}

// Exists reports whether the content id is present in local storage.
func (n *Node) Exists(ctx context.Context, cid string) (bool, error) {
	if cid == "" {
		return false, errors.InvalidParameter("cid", "must not be empty")
	}
	raw, err := n.inner.call(ctx, "storage.exists", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.StorageExists(c, cid, op)
	})
	if err != nil {
		return false, err
	}

	exists, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrap(errors.StageRuntime, errors.KindNativeFailure, err, "decode exists result")
	}
	return exists, nil
}

// Delete removes content from local storage. Deleting content that is
// not present is a native-side error.
func (n *Node) Delete(ctx context.Context, cid string) error {
	if cid == "" {
		return errors.InvalidParameter("cid", "must not be empty")
	}
	_, err := n.inner.call(ctx, "storage.delete", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.StorageDelete(c, cid, op)
	})
	return err
}

// List returns the manifests of all locally stored content.
func (n *Node) List(ctx context.Context) ([]Manifest, error) {
	raw, err := n.inner.call(ctx, "storage.list", nil, func(c native.Ctx, op *native.Operation) error {
		return n.inner.lib.StorageList(c, op)
	})
	if err != nil {
		return nil, err
	}

	var manifests []Manifest
	if err := json.Unmarshal([]byte(raw), &manifests); err != nil {
		return nil, errors.Wrap(errors.StageRuntime, errors.KindNativeFailure, err, "decode manifest list")
	}
	return manifests, nil
}
