package randomx

import "errors"

// ErrResourceUnavailable is returned when the RandomX cache or dataset
// could not be allocated, typically due to memory pressure. Fast-mode
// callers should fall back to light mode and log a single, visible
// notice; if light mode also fails the caller must refuse to start.
var ErrResourceUnavailable = errors.New("randomx: resource unavailable")

// ErrNotInitialized is returned when a hash is requested before the
// context or VM has been initialized for any seed.
var ErrNotInitialized = errors.New("randomx: not initialized")

// ErrDatasetUnavailable is returned by a per-thread VM when fast mode is
// requested but the shared dataset has not (yet) been built.
var ErrDatasetUnavailable = errors.New("randomx: dataset not available")
