package build

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/codex-storage/go-codex/errors"
)

// Driver produces or validates the native artifact for one linking
// mode. It is idempotent and safe under concurrent invocation against
// the same artifact path.
type Driver struct {
	// SourceDir is the resolved native source tree.
	SourceDir string

	// Mode is the linking mode, resolved by the caller.
	Mode Mode

	// Revision is the resolved source revision recorded in the
	// stamp. The driver does not talk to git; the resolver ran
	// first and the caller passes its result here.
	Revision string

	// MakeProg overrides the make binary, for tests.
	MakeProg string

	// LibParams is passed through to the native build as
	// CODEX_LIB_PARAMS.
	LibParams string
}

// ArtifactPath returns where this driver's artifact lives.
func (d *Driver) ArtifactPath() string {
	return filepath.Join(d.SourceDir, "build", d.Mode.LibraryName())
}

func (d *Driver) makeProg() string {
	if d.MakeProg != "" {
		return d.MakeProg
	}
	return "make"
}

// Ensure returns a current artifact, building it if needed.
//
// The stamp next to the artifact decides build avoidance: when it
// matches the revision, mode and the artifact's checksum, the
// toolchain is not invoked at all. Otherwise the build runs under an
// exclusive lock on the artifact path; a concurrent builder blocks on
// the lock and re-checks the stamp before doing anything, so exactly
// one toolchain invocation happens per stale artifact.
//
// A failed native build is fatal: the captured output is surfaced and
// the build is never retried automatically, because native build
// failures are not transient.
func (d *Driver) Ensure(ctx context.Context) (Artifact, error) {
	if _, err := exec.LookPath(d.makeProg()); err != nil {
		return Artifact{}, errors.ToolMissing(d.makeProg(), err)
	}

	if art, ok := d.current(); ok {
		Logger().Debug("native artifact up to date", zap.String("path", art.Path))
		return art, nil
	}

	if err := os.MkdirAll(filepath.Dir(d.ArtifactPath()), 0o755); err != nil {
		return Artifact{}, errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "create artifact directory")
	}

	lock, err := acquireLock(d.ArtifactPath() + ".lock")
	if err != nil {
		return Artifact{}, errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "lock artifact path")
	}
	defer lock.release()

	// Another builder may have finished while this one waited.
	if art, ok := d.current(); ok {
		Logger().Debug("native artifact built concurrently", zap.String("path", art.Path))
		return art, nil
	}

	if err := d.runMake(ctx); err != nil {
		return Artifact{}, err
	}

	sum, err := checksumFile(d.ArtifactPath())
	if err != nil {
		return Artifact{}, errors.BuildFailure("make", "",
			errors.Wrap(errors.StageBuild, errors.KindBuildFailure, err, "artifact missing after successful build"))
	}

	art := Artifact{
		Path:     d.ArtifactPath(),
		Mode:     d.Mode.String(),
		Revision: d.Revision,
		Checksum: sum,
	}
	if err := writeStamp(art); err != nil {
		return Artifact{}, err
	}

	Logger().Info("native artifact built",
		zap.String("path", art.Path),
		zap.String("mode", art.Mode),
		zap.String("revision", art.Revision))
	return art, nil
}

// current reports whether the existing artifact already matches the
// revision and mode. Any discrepancy (missing file, missing stamp,
// checksum drift) marks it stale.
func (d *Driver) current() (Artifact, bool) {
	stamp, ok := loadStamp(d.ArtifactPath())
	if !ok {
		return Artifact{}, false
	}
	if stamp.Revision != d.Revision || stamp.Mode != d.Mode.String() {
		return Artifact{}, false
	}
	sum, err := checksumFile(d.ArtifactPath())
	if err != nil || sum != stamp.Checksum {
		return Artifact{}, false
	}
	return stamp, true
}

func (d *Driver) runMake(ctx context.Context) error {
	args := []string{"-C", d.SourceDir}
	if d.Mode == ModeStatic {
		args = append(args, "STATIC=1")
	}
	args = append(args, "libcodex")

	cmd := exec.CommandContext(ctx, d.makeProg(), args...)
	cmd.Env = append(os.Environ(),
		"V=1",              // verbose native build output
		"USE_SYSTEM_NIM=0", // the tree builds its own pinned Nim
	)
	if d.LibParams != "" {
		cmd.Env = append(cmd.Env, "CODEX_LIB_PARAMS="+d.LibParams)
	}

	Logger().Info("building native library",
		zap.String("mode", d.Mode.String()),
		zap.Strings("args", args))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.BuildFailure("make", string(output), err)
	}
	return nil
}
