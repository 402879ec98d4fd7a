// Package build prepares the native library that package codex links
// against.
//
// The pipeline has three steps. The resolver places the native source
// tree at a pinned revision, cloning it when absent and refusing to
// proceed when the checkout drifts from the pin. The mode selector
// decides between dynamic and static linking, rejecting conflicting
// requests. The driver runs the native toolchain and records a stamp
// next to the artifact so that an up-to-date artifact is never
// rebuilt; concurrent invocations serialize on a file lock and at most
// one of them invokes the toolchain.
//
// The pipeline runs before the Go toolchain does, typically via the
// codex-build command, because cgo needs the artifact at link time.
package build
