package persist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/riemannulus/whaleback/internal/engine/errs"
)

const defaultBatchSize = 1000

// Persister upserts snapshot rows in fixed-size batches via a database-
// native "insert ... on conflict ... do update" statement, matching
// `internal/persistence/postgres/regime_repo.go`'s single-row upsert idiom
// generalised to an arbitrary multi-row batch.
type Persister struct {
	db        *sqlx.DB
	timeout   time.Duration
	batchSize int
}

// New builds a Persister with the default batch size of 1000 rows.
func New(db *sqlx.DB, timeout time.Duration) *Persister {
	return &Persister{db: db, timeout: timeout, batchSize: defaultBatchSize}
}

// Upsert writes rows in batches of p.batchSize. A batch failure is logged
// and returned in the error slice; the persister moves on to the next batch
// rather than aborting, per SPEC_FULL.md §4.8/§7's persist_batch_failure
// taxonomy entry.
func (p *Persister) Upsert(ctx context.Context, category string, cfg TableConfig, rows []Record) []error {
	if len(rows) == 0 {
		return nil
	}

	var failures []error
	for i := 0; i < len(rows); i += p.batchSize {
		end := i + p.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batchIndex := i / p.batchSize
		if err := p.upsertBatch(ctx, cfg, rows[i:end]); err != nil {
			wrapped := errs.NewPersistBatchFailure(category, batchIndex, err)
			log.Error().Err(wrapped).Msg("batch upsert failed, continuing with next batch")
			failures = append(failures, wrapped)
			continue
		}
	}
	return failures
}

func (p *Persister) upsertBatch(ctx context.Context, cfg TableConfig, batch []Record) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", cfg.Table, strings.Join(cfg.Columns, ", "))

	args := make([]interface{}, 0, len(batch)*len(cfg.Columns))
	placeholder := 1
	for i, row := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, col := range cfg.Columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", placeholder)
			placeholder++
			args = append(args, row[col])
		}
		sb.WriteString(")")
	}

	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET ", strings.Join(cfg.ConflictKeys, ", "))
	updateCols := cfg.updatableColumns()
	setClauses := make([]string, len(updateCols))
	for i, col := range updateCols {
		setClauses[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	sb.WriteString(strings.Join(setClauses, ", "))

	if _, err := p.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upsert into %s: %w", cfg.Table, err)
	}
	return nil
}
