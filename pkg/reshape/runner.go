package reshape

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/chronicle/pkg/event"
	"github.com/platinummonkey/chronicle/pkg/observability"
)

const defaultChunkSize = 500

// Stats summarizes one batch run over the events table.
type Stats struct {
	Examined      int64
	Rewritten     int64
	Unwrapped     int64
	Renamed       int64
	Skipped       int64
	PassedThrough int64
}

// Runner executes reshaping passes over the whole events table in bounded
// chunks. It is a maintenance-window tool: it holds no application-level
// locks and is not designed to run concurrently with live traffic.
type Runner struct {
	db        *sql.DB
	log       *logrus.Entry
	metrics   *observability.Metrics
	chunkSize int
}

// NewRunner creates a Runner. metrics may be nil; chunkSize <= 0 selects
// the default.
func NewRunner(db *sql.DB, log *logrus.Entry, metrics *observability.Metrics, chunkSize int) *Runner {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Runner{db: db, log: log, metrics: metrics, chunkSize: chunkSize}
}

type row struct {
	seq       int64
	id        string
	eventType string
	data      event.Data
}

// UpgradeAll applies the description-extraction upgrade to every row,
// then the identifier promotion. Idempotent: a second run leaves every row
// untouched.
func (r *Runner) UpgradeAll(ctx context.Context) (Stats, error) {
	var stats Stats

	err := r.forEachRow(ctx, func(ctx context.Context, rw row) error {
		stats.Examined++

		data, outcome := Upgrade(rw.eventType, rw.data)
		r.count(outcome)

		switch outcome {
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomePassthrough:
			stats.PassedThrough++
			// Deliberate non-error; keep it observable for forensics.
			r.log.WithFields(logrus.Fields{
				"event_id":   rw.id,
				"event_type": rw.eventType,
			}).Info("no extraction rule matched; event_data left unchanged")
		case OutcomeUnwrapped:
			stats.Unwrapped++
		case OutcomeRewritten:
			stats.Rewritten++
		}

		renamed, changed := PromoteIdentifiers(data)
		if changed {
			stats.Renamed++
		}

		if outcome == OutcomeRewritten || outcome == OutcomeUnwrapped || changed {
			return r.update(ctx, rw.seq, renamed)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	r.log.WithFields(logrus.Fields{
		"examined":    stats.Examined,
		"rewritten":   stats.Rewritten,
		"unwrapped":   stats.Unwrapped,
		"renamed":     stats.Renamed,
		"passthrough": stats.PassedThrough,
	}).Info("upgrade pass complete")
	return stats, nil
}

// DowngradeAll demotes identifiers and wraps every event_data payload back
// into the legacy {"description": "..."} shape. Lossy; see package comment.
func (r *Runner) DowngradeAll(ctx context.Context) (Stats, error) {
	var stats Stats

	err := r.forEachRow(ctx, func(ctx context.Context, rw row) error {
		stats.Examined++

		data, changed := DemoteIdentifiers(rw.data)
		if changed {
			stats.Renamed++
		}
		stats.Rewritten++
		return r.update(ctx, rw.seq, Downgrade(data))
	})
	if err != nil {
		return stats, err
	}

	r.log.WithFields(logrus.Fields{
		"examined":  stats.Examined,
		"rewritten": stats.Rewritten,
	}).Info("downgrade pass complete")
	return stats, nil
}

// forEachRow walks the whole table in seq order, chunked by keyset
// pagination so memory stays bounded regardless of table size.
func (r *Runner) forEachRow(ctx context.Context, fn func(context.Context, row) error) error {
	lastSeq := int64(0)
	for {
		rows, err := r.db.QueryContext(ctx,
			"SELECT seq, id, event_type, event_data FROM events WHERE seq > $1 ORDER BY seq LIMIT $2",
			lastSeq, r.chunkSize,
		)
		if err != nil {
			return fmt.Errorf("select chunk: %w", err)
		}

		chunk := make([]row, 0, r.chunkSize)
		for rows.Next() {
			var (
				rw       row
				dataJSON []byte
			)
			if err := rows.Scan(&rw.seq, &rw.id, &rw.eventType, &dataJSON); err != nil {
				rows.Close()
				return fmt.Errorf("scan row: %w", err)
			}
			if err := json.Unmarshal(dataJSON, &rw.data); err != nil {
				rows.Close()
				return fmt.Errorf("unmarshal event_data for %s: %w", rw.id, err)
			}
			chunk = append(chunk, rw)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate chunk: %w", err)
		}
		rows.Close()

		if len(chunk) == 0 {
			return nil
		}

		for _, rw := range chunk {
			if err := fn(ctx, rw); err != nil {
				return err
			}
			lastSeq = rw.seq
		}
	}
}

func (r *Runner) update(ctx context.Context, seq int64, data event.Data) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event_data: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE events SET event_data = $1 WHERE seq = $2", dataJSON, seq,
	); err != nil {
		return fmt.Errorf("update event_data: %w", err)
	}
	return nil
}

func (r *Runner) count(outcome Outcome) {
	if r.metrics != nil {
		r.metrics.ReshapeRowsTotal.WithLabelValues(outcome.String()).Inc()
	}
}
