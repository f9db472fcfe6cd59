// Package cache implements a content-hashed, versioned JSON record that
// lets a rerun with unchanged inputs skip the front end, graph builder, and
// orderer entirely. Files are hashed with github.com/minio/sha256-simd, a
// streaming, SIMD-accelerated SHA-256 that is a drop-in for crypto/sha256.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/sha256-simd"

	"github.com/svprune/svprune/internal/gather"
)

// Version is the current cache schema version. A reader rejects any record
// whose Meta.CacheVersion does not match.
const Version = 2

// Meta carries the cache schema version.
type Meta struct {
	CacheVersion int `json:"cache_version"`
}

// Record is the on-disk cache shape.
type Record struct {
	Meta               Meta              `json:"meta"`
	InputFileSet       []string          `json:"input_file_set"`
	FileHashes         map[string]string `json:"file_hashes"`
	Result             []string          `json:"result"`
	ResultIncludes     []string          `json:"result_includes"`
	ResultLibraryFiles []string          `json:"result_library_files"`
}

// TryLoad returns (record, true) only if the cache file exists, parses as
// the current schema version, its stored input set matches inputs exactly
// (same paths, same order), and every hash it recorded still matches the
// file on disk. Any other condition is a miss: TryLoad returns (nil, false)
// and never an error, since a miss is always recovered locally by
// recomputing.
func TryLoad(path string, inputs *gather.FileSet) (*Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	if rec.Meta.CacheVersion != Version {
		return nil, false
	}
	if !sameFileSet(rec.InputFileSet, inputs.Paths()) {
		return nil, false
	}
	for p, want := range rec.FileHashes {
		got, ok, err := hashFile(p)
		if err != nil || !ok || got != want {
			return nil, false
		}
	}
	return &rec, true
}

// Write builds the file-hash union (input set ∪ result ∪ includes ∪
// library files) and writes rec atomically: to a temp file in the same
// directory, then renamed over the destination, so a crash mid-write never
// corrupts a previously good cache.
func Write(path string, inputs *gather.FileSet, result, includes, libraryFiles []string) error {
	hashes := make(map[string]string)
	union := make([]string, 0, inputs.Len()+len(result)+len(includes)+len(libraryFiles))
	seen := make(map[string]bool)
	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		union = append(union, p)
	}
	for _, p := range inputs.Paths() {
		add(p)
	}
	for _, p := range result {
		add(p)
	}
	for _, p := range includes {
		add(p)
	}
	for _, p := range libraryFiles {
		add(p)
	}
	for _, p := range union {
		h, ok, err := hashFile(p)
		if err != nil {
			return fmt.Errorf("cache: hashing %q: %w", p, err)
		}
		if !ok {
			// A +incdir+ directory or other non-regular-file entry: it has
			// no byte content to hash, so it is left out of FileHashes.
			// Its presence in InputFileSet is still enough for TryLoad's
			// exact input-set comparison to catch it being added or removed.
			continue
		}
		hashes[p] = h
	}

	rec := Record{
		Meta:               Meta{CacheVersion: Version},
		InputFileSet:       append([]string(nil), inputs.Paths()...),
		FileHashes:         hashes,
		Result:             result,
		ResultIncludes:     includes,
		ResultLibraryFiles: libraryFiles,
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding record: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cache: renaming into place: %w", err)
	}
	return nil
}

func sameFileSet(stored, current []string) bool {
	if len(stored) != len(current) {
		return false
	}
	for i := range stored {
		if stored[i] != current[i] {
			return false
		}
	}
	return true
}

// hashFile hashes path's contents, returning ok=false (and no error) if
// path is a directory rather than a regular file: a +incdir+ entry gathered
// purely for input-set identity has no byte content to hash.
func hashFile(path string) (hash string, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), true, nil
}
