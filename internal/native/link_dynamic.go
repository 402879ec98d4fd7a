//go:build !codex_static

package native

// Dynamic linking is the default: libcodex.so resolves at process
// start from the artifact directory the build driver populates. The
// rpath means no LD_LIBRARY_PATH is needed for binaries run in-tree.

/*
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/build -lcodex
#cgo LDFLAGS: -Wl,-rpath,${SRCDIR}/../../third_party/nim-codex/build
*/
import "C"

// LinkMode identifies how libcodex is linked into this binary. It is
// fixed at compile time by the codex_static build tag; nothing branches
// on it at runtime.
const LinkMode = "dynamic"
