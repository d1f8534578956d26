package index

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
)

var ErrNotFound = errors.New("not found")

// Lookup finds the manifest entry an identifier was enumerated as. Ids match
// exactly, slugs ignoring case.
func (s *Store) Lookup(identifier string) (site.PathEntry, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return site.PathEntry{}, ErrNotFound
	}
	var e site.PathEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		pathsB := tx.Bucket(bPaths)
		manifestB := tx.Bucket(bManifest)
		if pathsB == nil || manifestB == nil {
			return ErrNotFound
		}
		for _, kind := range []site.IdentifierKind{site.KindID, site.KindSlug} {
			sk := pathsB.Get(makePathKey(kind, identifier))
			if sk == nil {
				continue
			}
			v := manifestB.Get(sk)
			if v == nil {
				continue
			}
			return json.Unmarshal(v, &e)
		}
		return ErrNotFound
	})
	return e, err
}

func (s *Store) Has(identifier string) bool {
	_, err := s.Lookup(identifier)
	return err == nil
}

// Paths returns the manifest in enumeration order.
func (s *Store) Paths() (site.Paths, error) {
	var out site.Paths
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bBuild); b != nil {
			out.Fallback = site.Fallback(b.Get(kFallback))
		}
		b := tx.Bucket(bManifest)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var e site.PathEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out.Entries = append(out.Entries, e)
			return nil
		})
	})
	return out, err
}

// BuiltAt is the time of the last Rebuild, or ErrNotFound before the first.
func (s *Store) BuiltAt() (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bBuild)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(kBuiltAt)
		if v == nil {
			return ErrNotFound
		}
		var err error
		t, err = time.Parse(time.RFC3339Nano, string(v))
		return err
	})
	return t, err
}
