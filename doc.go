// Package codex provides Go bindings for libcodex, the native
// decentralized storage node with erasure-coded content storage.
//
// The bindings own two problems: producing the native artifact before
// anything links against it, and keeping the FFI boundary safe at
// runtime. The storage protocol itself lives entirely in the native
// library.
//
// # Architecture Overview
//
//	codex/              Node lifecycle, content and peer operations
//	├── build/          Native artifact orchestration (clone, make, stamp)
//	├── cmd/codex-build Build CLI run before go build
//	├── errors/         Structured error taxonomy
//	└── internal/native cgo ABI, callback bridge, linking-mode flags
//
// # Building
//
// The native library must exist before this package links. The build
// CLI clones the pinned nim-codex revision and drives its Makefile:
//
//	go run github.com/codex-storage/go-codex/cmd/codex-build ensure
//	go build ./...
//
// Dynamic linking is the default. For a static binary, build the
// artifact with --static and compile with the matching tag:
//
//	go run github.com/codex-storage/go-codex/cmd/codex-build ensure --static
//	go build -tags codex_static ./...
//
// The tag selects the link flags at compile time; nothing branches on
// the linking mode at runtime, and only one mode's artifact can be
// loaded per process.
//
// # Quick Start
//
//	node, err := codex.Open(ctx, codex.Config{DataDir: "/var/lib/codex"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close(ctx)
//
//	cid, err := node.UploadFile(ctx, "dataset.bin", codex.UploadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := node.DownloadBytes(ctx, cid, codex.DownloadOptions{})
//
// # Ownership
//
// A Node exclusively owns its native context. Close releases it
// exactly once regardless of how many goroutines call Close, and every
// operation on a closed node fails with a handle_closed error instead
// of touching the released pointer. Abandoned nodes are released by a
// runtime cleanup as a backstop; rely on Close, not the collector.
//
// Ref provides weak diagnostic references that observe a node without
// participating in its release.
//
// # Asynchrony
//
// The native library completes long-running calls through callbacks on
// its own threads. Each call gets a single-fire completion slot;
// awaiting it parks the goroutine on a channel, so no OS thread blocks
// inside libcodex. Cancelling the context detaches the waiter; the
// native operation finishes in the background and its result is
// discarded safely.
//
// # Thread Safety
//
// Node is safe for concurrent use: the native library is not
// documented thread-safe, so calls on one node are serialized
// internally. Operations on different nodes run concurrently.
// Download streams are single-reader.
package codex
