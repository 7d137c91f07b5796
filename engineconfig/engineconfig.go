// Package engineconfig holds the UCI-exposed tuning knobs and their
// optional TOML-backed defaults. A TOML file (decoded with
// github.com/BurntSushi/toml) supplies defaults consulted once at
// startup; a missing or malformed file falls back to hardcoded values
// rather than failing the process.
package engineconfig

import (
	"github.com/BurntSushi/toml"
)

const (
	MinHashMB = 1
	MaxHashMB = 1 << 16

	MinMultiPV = 1
	MaxMultiPV = 5

	defaultHashMB  = 16
	defaultMultiPV = 1
)

// Options holds the engine's tunable parameters, as surfaced over UCI
// via setoption and optionally seeded from a TOML file at startup.
// Threads is accepted as a UCI option for protocol compatibility but is
// always pinned to 1: the search core is single-threaded by design.
type Options struct {
	HashMB   int
	OwnBook  bool
	BookFile string
	MultiPV  int
	Threads  int
}

// Defaults returns the engine's hardcoded fallback options.
func Defaults() Options {
	return Options{
		HashMB:   defaultHashMB,
		OwnBook:  false,
		BookFile: "",
		MultiPV:  defaultMultiPV,
		Threads:  1,
	}
}

// file mirrors the on-disk TOML layout. Its fields are a subset of
// Options: Threads is never configurable via file or setoption.
type file struct {
	HashMB   int    `toml:"hash_mb"`
	OwnBook  bool   `toml:"own_book"`
	BookFile string `toml:"book_file"`
	MultiPV  int    `toml:"multi_pv"`
}

// Load reads path as a TOML file of default option values. A missing or
// malformed file is not an error the caller must handle specially for
// startup to proceed: Load returns Defaults() in that case, never
// failing startup over configuration. Load does report a decode error so
// callers that want to log it (cmd/corvid does, via enginelog) may.
func Load(path string) (Options, error) {
	opts := Defaults()

	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return opts, err
	}

	if f.HashMB != 0 {
		opts.HashMB = f.HashMB
	}
	opts.OwnBook = f.OwnBook
	if f.BookFile != "" {
		opts.BookFile = f.BookFile
	}
	if f.MultiPV != 0 {
		opts.MultiPV = f.MultiPV
	}

	return opts.Clamped(), nil
}

// Clamped returns a copy of o with HashMB and MultiPV restricted to the
// ranges the UCI option schema advertises, and Threads pinned to 1.
func (o Options) Clamped() Options {
	if o.HashMB < MinHashMB {
		o.HashMB = MinHashMB
	}
	if o.HashMB > MaxHashMB {
		o.HashMB = MaxHashMB
	}
	if o.MultiPV < MinMultiPV {
		o.MultiPV = MinMultiPV
	}
	if o.MultiPV > MaxMultiPV {
		o.MultiPV = MaxMultiPV
	}
	o.Threads = 1
	return o
}
