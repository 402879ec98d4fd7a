package build

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/codex-storage/go-codex/errors"
)

// Artifact describes one built native library. The stamp next to the
// artifact records what it was built from; a stamp that does not match
// the current pin, mode and file contents marks the artifact stale.
type Artifact struct {
	Path     string `json:"-"`
	Mode     string `json:"mode"`
	Revision string `json:"revision"`
	Checksum string `json:"checksum"`
}

func stampPath(artifactPath string) string {
	return artifactPath + ".stamp"
}

// checksumFile returns the blake3 hex digest of a file.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// loadStamp reads the stamp for an artifact path. A missing or
// unreadable stamp returns ok=false: the artifact is then treated as
// stale, never trusted.
func loadStamp(artifactPath string) (Artifact, bool) {
	raw, err := os.ReadFile(stampPath(artifactPath))
	if err != nil {
		return Artifact{}, false
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}, false
	}
	a.Path = artifactPath
	return a, true
}

// writeStamp records the artifact's provenance. The stamp is written
// to a temporary file and renamed into place: it is replaced, never
// mutated, so a concurrent reader sees either the old stamp or the
// new one.
func writeStamp(a Artifact) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "encode stamp")
	}

	dir := filepath.Dir(a.Path)
	tmp, err := os.CreateTemp(dir, ".stamp-*")
	if err != nil {
		return errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "create stamp")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "write stamp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "close stamp")
	}
	if err := os.Rename(tmpName, stampPath(a.Path)); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "replace stamp")
	}
	return nil
}
