package index

import (
	"encoding/json"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
)

// Rebuild replaces the manifest with paths in a single transaction.
// Duplicate entries keep their first position.
func (s *Store) Rebuild(paths site.Paths, builtAt time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bPaths, bManifest, bBuild} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}

		pathsB, err := tx.CreateBucket(bPaths)
		if err != nil {
			return err
		}
		manifestB, err := tx.CreateBucket(bManifest)
		if err != nil {
			return err
		}
		buildB, err := tx.CreateBucket(bBuild)
		if err != nil {
			return err
		}

		var seq uint64
		for _, e := range paths.Entries {
			if strings.TrimSpace(e.Value) == "" {
				continue
			}
			pk := makePathKey(e.Kind, e.Value)
			if pathsB.Get(pk) != nil {
				continue
			}
			eb, err := json.Marshal(e)
			if err != nil {
				return err
			}
			sk := makeSeqKey(seq)
			if err := manifestB.Put(sk, eb); err != nil {
				return err
			}
			if err := pathsB.Put(pk, sk); err != nil {
				return err
			}
			seq++
		}

		if err := buildB.Put(kFallback, []byte(paths.Fallback)); err != nil {
			return err
		}
		return buildB.Put(kBuiltAt, []byte(builtAt.UTC().Format(time.RFC3339Nano)))
	})
}
