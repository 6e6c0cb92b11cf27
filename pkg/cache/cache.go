// Package cache provides byte-blob caching for rendered plate artifacts.
//
// The pipeline caches expensive render outputs (SVG, PDF, raster pages)
// keyed by content hashes of the document geometry plus the render options
// that shaped the bytes. Two backends ship with the CLI (FileCache,
// NullCache) and one with the server deployment (RedisCache); all implement
// the same Cache interface, so callers never care which one they hold.
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached object classes.
const (
	// TTLDocument is how long serialized document geometry stays cached.
	TTLDocument = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts stay cached. Artifacts are
	// pure functions of document + options, so a long TTL is safe.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface for cached blobs.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
// Errors are reserved for backend failures, not misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DocumentKeyOpts are the layout options that distinguish otherwise
// identical inputs when caching document geometry.
type DocumentKeyOpts struct {
	Mode          string
	PageWidth     float64
	PageHeight    float64
	Margin        float64
	Spacing       float64
	Scale         float64
	ImagesPerPage int
	Seed          uint64

	// OptionsHash fingerprints the remaining layout options (sorting,
	// grouping, annotations) so they need no individual fields here.
	OptionsHash string
}

// ArtifactKeyOpts are the render options that distinguish artifacts
// produced from the same document.
type ArtifactKeyOpts struct {
	Format  string
	Quality int
	DPI     float64
}

// Keyer generates cache keys for the cacheable pipeline stages.
type Keyer interface {
	// DocumentKey generates a key for document geometry caching.
	// inputHash is a content hash over the sorted input item list.
	DocumentKey(inputHash string, opts DocumentKeyOpts) string

	// ArtifactKey generates a key for rendered artifact caching.
	// docHash is a content hash over the serialized document.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator. Keys are prefixed by object
// class and derived from SHA-256 over the JSON-encoded components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key for document geometry caching.
func (k *DefaultKeyer) DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", inputHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
