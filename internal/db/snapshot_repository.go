package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udisondev/statuseffect/internal/attribute"
)

// SnapshotRepository stores entity attribute snapshots.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// attributeRow is one row of entity_attributes.
type attributeRow struct {
	objectID  uint32
	attribute string
	value     float64
	maxValue  *float64
}

// LoadAll loads every stored entity in ascending object ID order.
// Entities without attributes come back with all attribute fields nil.
func (r *SnapshotRepository) LoadAll(ctx context.Context) ([]attribute.Snapshot, error) {
	query := `
		SELECT e.object_id, e.name, a.attribute, a.value, a.max_value
		FROM entities e
		LEFT JOIN entity_attributes a ON a.object_id = e.object_id
		ORDER BY e.object_id, a.attribute
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]attribute.Snapshot, 0, 64)
	for rows.Next() {
		var (
			objectID   int64
			entityName string
			name       *string
			value      *float64
			maxValue   *float64
		)
		if err := rows.Scan(&objectID, &entityName, &name, &value, &maxValue); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}

		if len(snaps) == 0 || snaps[len(snaps)-1].ObjectID != uint32(objectID) {
			snaps = append(snaps, attribute.Snapshot{ObjectID: uint32(objectID), Name: entityName})
		}
		if name == nil {
			continue
		}

		row := attributeRow{objectID: uint32(objectID), attribute: *name, maxValue: maxValue}
		if value != nil {
			row.value = *value
		}
		if err := applyRow(&snaps[len(snaps)-1], row); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return snaps, nil
}

// SaveTx replaces all stored snapshots within a transaction (full replace).
func (r *SnapshotRepository) SaveTx(ctx context.Context, tx pgx.Tx, snaps []attribute.Snapshot) error {
	if _, err := tx.Exec(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("deleting old snapshots: %w", err)
	}

	if len(snaps) == 0 {
		return nil
	}

	entityRows := make([][]any, 0, len(snaps))
	attrRows := make([][]any, 0, len(snaps)*2)
	for _, s := range snaps {
		entityRows = append(entityRows, []any{int64(s.ObjectID), s.Name})
		for _, row := range toRows(s) {
			attrRows = append(attrRows, []any{int64(row.objectID), row.attribute, row.value, row.maxValue})
		}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"entities"},
		[]string{"object_id", "name"},
		pgx.CopyFromRows(entityRows),
	); err != nil {
		return fmt.Errorf("inserting entities: %w", err)
	}

	if len(attrRows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"entity_attributes"},
			[]string{"object_id", "attribute", "value", "max_value"},
			pgx.CopyFromRows(attrRows),
		); err != nil {
			return fmt.Errorf("inserting entity attributes: %w", err)
		}
	}

	slog.Debug("saved snapshots",
		"entities", len(entityRows),
		"attributes", len(attrRows))

	return nil
}

// Save replaces all stored snapshots in its own transaction.
func (r *SnapshotRepository) Save(ctx context.Context, snaps []attribute.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := rollback(ctx, tx); err != nil {
			slog.Error("rollback failed", "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, snaps); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot save: %w", err)
	}
	return nil
}

func toRows(s attribute.Snapshot) []attributeRow {
	rows := make([]attributeRow, 0, 3)
	if s.Armor != nil {
		rows = append(rows, attributeRow{objectID: s.ObjectID, attribute: attribute.NameArmor, value: s.Armor.Value})
	}
	if s.Health != nil {
		maxValue := s.Health.Max
		rows = append(rows, attributeRow{objectID: s.ObjectID, attribute: attribute.NameHealth, value: s.Health.Current, maxValue: &maxValue})
	}
	if s.Speed != nil {
		rows = append(rows, attributeRow{objectID: s.ObjectID, attribute: attribute.NameSpeed, value: s.Speed.Value})
	}
	return rows
}

func applyRow(s *attribute.Snapshot, row attributeRow) error {
	switch row.attribute {
	case attribute.NameSpeed:
		s.Speed = &attribute.Speed{Value: row.value}
	case attribute.NameArmor:
		s.Armor = &attribute.Armor{Value: row.value}
	case attribute.NameHealth:
		h := attribute.Health{Current: row.value, Max: row.value}
		if row.maxValue != nil {
			h.Max = *row.maxValue
		}
		s.Health = &h
	default:
		return fmt.Errorf("entity %d: unknown attribute %q", row.objectID, row.attribute)
	}
	return nil
}
