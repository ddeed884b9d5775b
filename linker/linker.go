// Package linker links identifiers across the independently-keyed source
// databases. Institution records are keyed by their own ids, but source and
// holding records reference institutions by siglum - the short institution
// code used as a cross-catalog join key. Rather than querying the other
// source per record, the table is built in one pass over the institution
// rows and applied linearly from extractors.
package linker

import (
	"context"
	"io"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"

	indexer "github.com/rism-digital/muscatplus-indexer"
)

var linkBucket = []byte("links")

// Table is a bolt-backed siglum to document-id mapping. It persists across
// runs so that incremental runs can link without re-reading the institution
// source.
type Table struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the link table at filename.
func Open(filename string) (*Table, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening link table '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(linkBucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &Table{db: db}, nil
}

func (t *Table) Close() error {
	if err := t.db.Sync(); err != nil {
		return errors.Wrap(err, "syncing link table")
	}
	return t.db.Close()
}

// Put records one key to document-id link.
func (t *Table) Put(key, id string) error {
	err := t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(linkBucket).Put([]byte(key), []byte(id))
	})
	return errors.Wrapf(err, "linking %v", key)
}

// Get returns the document id linked to key.
func (t *Table) Get(key string) (string, bool) {
	var id string
	_ = t.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(linkBucket).Get([]byte(key)); v != nil {
			id = string(v)
		}
		return nil
	})
	return id, id != ""
}

// Build drains one cursor over the keyed source, mapping each row's key
// column to the document id idFn derives for it. Rows with an empty key are
// skipped. Returns the number of links written.
func Build(ctx context.Context, t *Table, cur indexer.Cursor, keyColumn string, idFn func(indexer.Row) string) (int, error) {
	total := 0
	for {
		batch, err := cur.Next(ctx)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, errors.Wrap(err, "fetching link batch")
		}
		err = t.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(linkBucket)
			for _, row := range batch.Rows {
				key, _ := row[keyColumn].(string)
				if key == "" {
					continue
				}
				if err := b.Put([]byte(key), []byte(idFn(row))); err != nil {
					return err
				}
				total++
			}
			return nil
		})
		if err != nil {
			return total, errors.Wrap(err, "writing links")
		}
	}
}
