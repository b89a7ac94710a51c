// Package cache persists what each input unit produced on the previous pass
// so unchanged units are not regenerated and outputs that are no longer
// produced can be removed.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Version of the manifest layout. Manifests of another version are ignored.
const Version = 1

// DefaultPath is the manifest location relative to the project directory.
const DefaultPath = ".autogen/cache.msgpack"

// ErrCorrupt is returned by Load for a manifest that cannot be decoded.
var ErrCorrupt = errors.New("cache: corrupt manifest")

// Entry is the cached state of one input unit.
type Entry struct {
	Hash string `msgpack:"hash"`
	// Outputs are slash-separated paths relative to the project directory.
	Outputs []string `msgpack:"outputs"`
}

// Manifest is the persisted form of the cache.
type Manifest struct {
	Version     int               `msgpack:"version"`
	Fingerprint string            `msgpack:"fingerprint"`
	Units       map[string]*Entry `msgpack:"units"`
}

// Cache compares the units of the current pass with the manifest of the
// previous one. It is safe for concurrent use.
type Cache struct {
	root        string
	path        string
	fingerprint string

	mu   sync.Mutex
	prev *Manifest
	next *Manifest
}

// New returns an empty cache for the project at root. Units hashed under a
// different fingerprint are never fresh.
func New(root, fingerprint string) *Cache {
	return &Cache{
		root:        root,
		path:        filepath.Join(root, filepath.FromSlash(DefaultPath)),
		fingerprint: fingerprint,
		prev:        newManifest(fingerprint),
		next:        newManifest(fingerprint),
	}
}

func newManifest(fingerprint string) *Manifest {
	return &Manifest{Version: Version, Fingerprint: fingerprint, Units: make(map[string]*Entry)}
}

// Path returns the manifest path.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the manifest of the previous pass. A missing manifest is not
// an error. On failure the cache stays empty and can still be used.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache manifest: %w", err)
	}
	var m Manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w %s: %v", ErrCorrupt, c.path, err)
	}
	if m.Version != Version {
		return fmt.Errorf("%w %s: version %d, want %d", ErrCorrupt, c.path, m.Version, Version)
	}
	if m.Units == nil {
		m.Units = make(map[string]*Entry)
	}
	c.mu.Lock()
	c.prev = &m
	c.mu.Unlock()
	return nil
}

// Fresh reports whether unit was produced from the same hash under the same
// fingerprint and every output it produced still exists.
func (c *Cache) Fresh(unit, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prev.Fingerprint != c.fingerprint {
		return false
	}
	e, ok := c.prev.Units[unit]
	if !ok || e.Hash != hash {
		return false
	}
	for _, out := range e.Outputs {
		if _, err := os.Stat(c.abs(out)); err != nil {
			return false
		}
	}
	return true
}

// Keep carries the previous entry of a fresh unit into the next manifest
// and returns its outputs as absolute paths.
func (c *Cache) Keep(unit string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.prev.Units[unit]
	if !ok {
		return nil
	}
	c.next.Units[unit] = &Entry{Hash: e.Hash, Outputs: slices.Clone(e.Outputs)}
	out := make([]string, len(e.Outputs))
	for i, o := range e.Outputs {
		out[i] = c.abs(o)
	}
	return out
}

// KeepPrefix carries every previous unit whose name starts with prefix,
// for inputs that were not examined by the current pass.
func (c *Cache) KeepPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for unit, e := range c.prev.Units {
		if strings.HasPrefix(unit, prefix) {
			c.next.Units[unit] = &Entry{Hash: e.Hash, Outputs: slices.Clone(e.Outputs)}
		}
	}
}

// Record stores the hash and absolute output paths of a regenerated unit.
func (c *Cache) Record(unit, hash string, outputs []string) {
	rel := make([]string, 0, len(outputs))
	for _, o := range outputs {
		rel = append(rel, c.rel(o))
	}
	slices.Sort(rel)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next.Units[unit] = &Entry{Hash: hash, Outputs: rel}
}

// Stale returns the absolute paths produced on the previous pass that no
// unit of the current pass produces.
func (c *Cache) Stale() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := make(map[string]bool)
	for _, e := range c.next.Units {
		for _, o := range e.Outputs {
			current[o] = true
		}
	}
	seen := make(map[string]bool)
	var stale []string
	for _, e := range c.prev.Units {
		for _, o := range e.Outputs {
			if !current[o] && !seen[o] {
				seen[o] = true
				stale = append(stale, c.abs(o))
			}
		}
	}
	slices.Sort(stale)
	return stale
}

// Save writes the manifest of the current pass atomically.
func (c *Cache) Save() error {
	c.mu.Lock()
	data, err := marshal(c.next)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode cache manifest: %w", err)
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("write cache manifest: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache manifest: %w", err)
	}
	return nil
}

// Units returns the number of units recorded for the current pass.
func (c *Cache) Units() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.next.Units)
}

func (c *Cache) abs(rel string) string {
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

func (c *Cache) rel(path string) string {
	if r, err := filepath.Rel(c.root, path); err == nil {
		path = r
	}
	return filepath.ToSlash(path)
}

// Hash returns the content hash of a unit: sha256 over the msgpack encoding
// of v, with map keys sorted, and the fingerprint.
func Hash(fingerprint string, v any) (string, error) {
	data, err := marshal(v)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
