// Package source pages rows out of the relational catalog databases. A
// Cursor performs bounded keyset-paginated fetches, materializing one batch
// per page; the pipeline consumes batches from a single goroutine while
// workers borrow their own pool connections for everything else.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	indexer "github.com/rism-digital/muscatplus-indexer"
)

// DefaultPageSize bounds a fetch when no batch size is configured. Very
// large record types are usually run with a bigger configured size.
const DefaultPageSize = 500

// Config selects and filters one source table.
type Config struct {
	// Table to page over. Must carry a bigint "id" primary key.
	Table string
	// Columns to fetch; "id" must be among them.
	Columns []string
	// PageSize bounds each fetch. Zero means DefaultPageSize.
	PageSize int
	// ID restricts the run to a single identifier when non-zero.
	ID int64
	// Since restricts to rows updated at or after the given time, for
	// incremental runs.
	Since time.Time
}

// Cursor yields one batch per page. Not safe for concurrent use; the
// pipeline contract is a single-threaded cursor.
type Cursor struct {
	pool   *pgxpool.Pool
	cfg    Config
	lastID int64
	num    int
	done   bool
}

func NewCursor(pool *pgxpool.Pool, cfg Config) *Cursor {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Cursor{pool: pool, cfg: cfg}
}

// Next fetches the next page. It returns io.EOF once the table is exhausted.
func (c *Cursor) Next(ctx context.Context) (*indexer.Batch, error) {
	if c.done {
		return nil, io.EOF
	}
	query, args := c.buildQuery()
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "paging %s", c.cfg.Table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	batch := &indexer.Batch{Num: c.num + 1}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s row", c.cfg.Table)
		}
		row := make(indexer.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = vals[i]
		}
		if id, ok := rowKey(row); ok {
			c.lastID = id
		}
		batch.Rows = append(batch.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "paging %s", c.cfg.Table)
	}
	if len(batch.Rows) == 0 {
		c.done = true
		return nil, io.EOF
	}
	if len(batch.Rows) < c.cfg.PageSize || c.cfg.ID != 0 {
		c.done = true
	}
	c.num++
	return batch, nil
}

func (c *Cursor) buildQuery() (string, []any) {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "SELECT %s FROM %s WHERE id > $1",
		strings.Join(c.cfg.Columns, ", "), c.cfg.Table)
	args := []any{c.lastID}
	if c.cfg.ID != 0 {
		args = append(args, c.cfg.ID)
		fmt.Fprintf(sb, " AND id = $%d", len(args))
	}
	if !c.cfg.Since.IsZero() {
		args = append(args, c.cfg.Since)
		fmt.Fprintf(sb, " AND updated_at >= $%d", len(args))
	}
	fmt.Fprintf(sb, " ORDER BY id LIMIT %d", c.cfg.PageSize)
	return sb.String(), args
}

func rowKey(row indexer.Row) (int64, bool) {
	switch v := row["id"].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	}
	return 0, false
}
