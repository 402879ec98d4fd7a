package build

import (
	"fmt"

	"github.com/codex-storage/go-codex/errors"
)

// Mode is the linking mode of the native artifact. Exactly one mode is
// active per build; it is resolved once from configuration and passed
// to every downstream step, which never re-derives it.
type Mode int

const (
	// ModeDynamic links libcodex.so at load time. The default: it
	// resolves reliably on every supported platform without the
	// vendored static dependency chain.
	ModeDynamic Mode = iota

	// ModeStatic archives libcodex.a into the final binary.
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeDynamic:
		return "dynamic"
	case ModeStatic:
		return "static"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// LibraryName returns the artifact file name for this mode.
func (m Mode) LibraryName() string {
	if m == ModeStatic {
		return "libcodex.a"
	}
	return "libcodex.so"
}

// BuildTag returns the go build tag consumers must compile with, or
// empty for the default mode.
func (m Mode) BuildTag() string {
	if m == ModeStatic {
		return "codex_static"
	}
	return ""
}

// ResolveMode turns the two mutually exclusive configuration switches
// into a Mode. Requesting both is a configuration error; requesting
// neither selects dynamic.
func ResolveMode(static, dynamic bool) (Mode, error) {
	switch {
	case static && dynamic:
		return ModeDynamic, errors.ModeConflict()
	case static:
		return ModeStatic, nil
	default:
		return ModeDynamic, nil
	}
}

// ParseMode parses a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "dynamic":
		return ModeDynamic, nil
	case "static":
		return ModeStatic, nil
	default:
		return ModeDynamic, errors.Wrap(errors.StageLink, errors.KindModeConflict, nil,
			fmt.Sprintf("unknown linking mode %q", s))
	}
}
