// Package metrics records per-attempt outcomes for later analysis. Sinks are
// best-effort: recording must never fail or slow down a generation run.
package metrics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/variantlab/internal/db"
)

// Attempt is one judged variant outcome.
type Attempt struct {
	RunID        uuid.UUID
	GenomeID     string
	Round        int
	Technique    string
	Modifiers    []string
	SkeletonName string
	StrictScore  int
	LenientScore int
	Fitness      float64
	Success      bool
}

// Sink receives attempt records. Implementations must be fire-and-forget:
// Record never returns an error and must not block the caller on failures.
type Sink interface {
	Record(ctx context.Context, a Attempt)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Record(context.Context, Attempt) {}

// WriterSink emits one compact line per attempt, for verbose CLI runs.
type WriterSink struct {
	out io.Writer
}

// NewWriterSink creates a sink writing to out.
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (s *WriterSink) Record(_ context.Context, a Attempt) {
	status := "fail"
	if a.Success {
		status = "ok"
	}
	fmt.Fprintf(s.out, "[attempt] round=%d technique=%s skeleton=%s strict=%d lenient=%d fitness=%.2f %s\n",
		a.Round, a.Technique, a.SkeletonName, a.StrictScore, a.LenientScore, a.Fitness, status)
}

// dbTimeout bounds each write so a slow database cannot stall a run.
const dbTimeout = 5 * time.Second

// DBSink persists attempts to PostgreSQL. Write errors are swallowed; the
// run's results are already held in memory and a lost metric row is not
// worth aborting for.
type DBSink struct {
	db *db.DB
}

// NewDBSink wraps an open database handle. A nil handle yields a sink that
// records nothing.
func NewDBSink(database *db.DB) *DBSink {
	return &DBSink{db: database}
}

func (s *DBSink) Record(ctx context.Context, a Attempt) {
	if s.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	_ = s.db.SaveAttempt(ctx, db.AttemptRecord{
		RunID:        a.RunID,
		Round:        a.Round,
		Technique:    a.Technique,
		Modifiers:    a.Modifiers,
		SkeletonName: a.SkeletonName,
		StrictScore:  a.StrictScore,
		LenientScore: a.LenientScore,
		Fitness:      a.Fitness,
		Success:      a.Success,
	})
}

// MultiSink fans out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks; nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSink{sinks: kept}
}

func (m *MultiSink) Record(ctx context.Context, a Attempt) {
	for _, s := range m.sinks {
		s.Record(ctx, a)
	}
}
