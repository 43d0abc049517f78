package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dvp2015/xpypact/internal/collector"
)

// Save replaces the content of all the tables with r. It creates the missing
// tables and runs on a dedicated connection in a single transaction, so a
// failure leaves the previous content in place.
func (s *Store) Save(ctx context.Context, r *collector.Result) error {
	if err := s.checkWritable("save"); err != nil {
		return err
	}
	start := time.Now()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("store: acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx for save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	for _, t := range dropOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("store: clear %s: %w", t, err)
		}
	}

	if err := insertRows(ctx, tx, runDataTable, r.RunData); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, timeStepTimesTable, r.TimeStepTimes); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, timeStepTable, r.TimeSteps); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, nuclideTable, r.Nuclides); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, timeStepNuclideTable, r.TimeStepNuclides); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, gbinsTable, r.GBins); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, timeStepGammaTable, r.TimeStepGamma); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	s.log.Info("result saved",
		"rundata", len(r.RunData),
		"timestep", len(r.TimeSteps),
		"nuclide", len(r.Nuclides),
		"timestep_nuclide", len(r.TimeStepNuclides),
		"timestep_gamma", len(r.TimeStepGamma),
		"elapsed", time.Since(start),
	)
	return nil
}

func insertRows[T any](ctx context.Context, tx *sql.Tx, t table[T], rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, t.insertSQL())
	if err != nil {
		return fmt.Errorf("store: prepare %s insert: %w", t.name, err)
	}
	defer stmt.Close()

	for i := range rows {
		if _, err := stmt.ExecContext(ctx, t.fields(&rows[i])...); err != nil {
			return fmt.Errorf("store: insert %s row %d: %w", t.name, i, err)
		}
	}
	return nil
}
