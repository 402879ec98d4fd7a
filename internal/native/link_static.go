//go:build codex_static

package native

// Static linking archives libcodex.a and its vendored dependencies
// into the final binary. The whole-archive group mirrors the library's
// own link order: libcodex last, since it depends on everything before
// it. OpenMP stays dynamic (leopard's erasure coder) and so does the
// C++ runtime.

/*
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/build
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/vendor/nim-libbacktrace/install/usr/lib
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/vendor/nim-libbacktrace/vendor/libbacktrace-upstream/.libs
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/vendor/nim-circom-compat/vendor/circom-compat-ffi/target/release
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/vendor/nim-nat-traversal/vendor/libnatpmp-upstream
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/vendor/nim-nat-traversal/vendor/miniupnp/miniupnpc/build
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/nim-codex/nimcache/release/libcodex/vendor_leopard
#cgo LDFLAGS: -Wl,--whole-archive
#cgo LDFLAGS: -lbacktrace -lcircom_compat_ffi -lnatpmp -lminiupnpc -lbacktracenim -llibleopard -lcodex
#cgo LDFLAGS: -Wl,--no-whole-archive
#cgo LDFLAGS: -lstdc++ -lgomp
#cgo LDFLAGS: -Wl,--allow-multiple-definition
*/
import "C"

// LinkMode identifies how libcodex is linked into this binary. It is
// fixed at compile time by the codex_static build tag; nothing branches
// on it at runtime.
const LinkMode = "static"
