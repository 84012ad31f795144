package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AttemptRecord is one judged variant attempt within a run.
type AttemptRecord struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Round        int       `json:"round"`
	Technique    string    `json:"technique"`
	Modifiers    []string  `json:"modifiers"`
	SkeletonName string    `json:"skeleton_name"`
	StrictScore  int       `json:"strict_score"`
	LenientScore int       `json:"lenient_score"`
	Fitness      float64   `json:"fitness"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}

// SaveAttempt stores one judged attempt.
func (db *DB) SaveAttempt(ctx context.Context, a AttemptRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO variant_attempts
		   (run_id, round, technique, modifiers, skeleton_name, strict_score, lenient_score, fitness, success)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.RunID, a.Round, a.Technique, a.Modifiers, a.SkeletonName,
		a.StrictScore, a.LenientScore, a.Fitness, a.Success,
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// GenerationSummary aggregates one evolution generation.
type GenerationSummary struct {
	RunID        uuid.UUID `json:"run_id"`
	Generation   int       `json:"generation"`
	BestFitness  float64   `json:"best_fitness"`
	MeanFitness  float64   `json:"mean_fitness"`
	BestGenomeID string    `json:"best_genome_id"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
}

// SaveGenerationSummary stores one generation's aggregate record.
func (db *DB) SaveGenerationSummary(ctx context.Context, s GenerationSummary) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO generation_summaries
		   (run_id, generation, best_fitness, mean_fitness, best_genome_id, success_count, failure_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id, generation) DO UPDATE SET
		   best_fitness = $3, mean_fitness = $4, best_genome_id = $5,
		   success_count = $6, failure_count = $7`,
		s.RunID, s.Generation, s.BestFitness, s.MeanFitness, s.BestGenomeID,
		s.SuccessCount, s.FailureCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save generation summary: %w", err)
	}
	return nil
}

// ListAttempts retrieves a run's attempts in round order.
func (db *DB) ListAttempts(ctx context.Context, runID uuid.UUID) ([]AttemptRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, round, technique, modifiers, skeleton_name,
		        strict_score, lenient_score, fitness, success, created_at
		 FROM variant_attempts WHERE run_id = $1 ORDER BY round ASC, created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []AttemptRecord
	for rows.Next() {
		var a AttemptRecord
		if err := rows.Scan(&a.ID, &a.RunID, &a.Round, &a.Technique, &a.Modifiers, &a.SkeletonName,
			&a.StrictScore, &a.LenientScore, &a.Fitness, &a.Success, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
