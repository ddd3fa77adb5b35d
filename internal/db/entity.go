package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// UpsertEntity inserts or updates an entity record.
//
// Entities follow merge semantics: the (feature_id, name) pair is the
// unique key and existing rows are updated in place. Entities absent
// from a later document revision are kept; data-model syncs never
// shrink the entity set.
func (db *DB) UpsertEntity(entity *schema.Entity) error {
	return db.UpsertEntityContext(context.Background(), entity)
}

// UpsertEntityContext inserts or updates an entity with context support.
func (db *DB) UpsertEntityContext(ctx context.Context, entity *schema.Entity) error {
	entity.SetDefaults()
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	attrsJSON, err := json.Marshal(entity.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}
	relsJSON, err := json.Marshal(entity.Relationships)
	if err != nil {
		return fmt.Errorf("failed to marshal relationships: %w", err)
	}

	query := `
	INSERT INTO entities (feature_id, name, description, attributes, relationships)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(feature_id, name) DO UPDATE SET
		description = excluded.description,
		attributes = excluded.attributes,
		relationships = excluded.relationships
	`

	_, err = db.conn.ExecContext(ctx, query,
		entity.FeatureID,
		entity.Name,
		entity.Description,
		string(attrsJSON),
		string(relsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entity %s: %w", entity.Name, err)
	}

	return nil
}

// GetEntityByName retrieves a single entity by name within a feature.
// Returns sql.ErrNoRows if the entity is not found.
func (db *DB) GetEntityByName(featureID int64, name string) (*schema.Entity, error) {
	return db.GetEntityByNameContext(context.Background(), featureID, name)
}

// GetEntityByNameContext retrieves an entity with context support.
func (db *DB) GetEntityByNameContext(ctx context.Context, featureID int64, name string) (*schema.Entity, error) {
	query := `
	SELECT id, feature_id, name, description, attributes, relationships
	FROM entities
	WHERE feature_id = ? AND name = ?
	`

	row := db.conn.QueryRowContext(ctx, query, featureID, name)

	var entity schema.Entity
	var attrsJSON, relsJSON string

	err := row.Scan(
		&entity.ID,
		&entity.FeatureID,
		&entity.Name,
		&entity.Description,
		&attrsJSON,
		&relsJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeEntityLists(&entity, attrsJSON, relsJSON); err != nil {
		return nil, err
	}
	return &entity, nil
}

// ListEntitiesByFeature retrieves a feature's entities ordered by name.
func (db *DB) ListEntitiesByFeature(featureID int64) ([]*schema.Entity, error) {
	return db.ListEntitiesByFeatureContext(context.Background(), featureID)
}

// ListEntitiesByFeatureContext retrieves entities with context support.
func (db *DB) ListEntitiesByFeatureContext(ctx context.Context, featureID int64) ([]*schema.Entity, error) {
	query := `
	SELECT id, feature_id, name, description, attributes, relationships
	FROM entities
	WHERE feature_id = ?
	ORDER BY name ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, featureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*schema.Entity
	for rows.Next() {
		var entity schema.Entity
		var attrsJSON, relsJSON string

		err := rows.Scan(
			&entity.ID,
			&entity.FeatureID,
			&entity.Name,
			&entity.Description,
			&attrsJSON,
			&relsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}

		if err := decodeEntityLists(&entity, attrsJSON, relsJSON); err != nil {
			return nil, err
		}
		entities = append(entities, &entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

// DeleteEntitiesByFeature removes all entity records of a feature.
// Returns nil if there are none (idempotent). The sync engine never
// calls this; it exists for explicit cleanup.
func (db *DB) DeleteEntitiesByFeature(featureID int64) error {
	return db.DeleteEntitiesByFeatureContext(context.Background(), featureID)
}

// DeleteEntitiesByFeatureContext removes a feature's entities with context support.
func (db *DB) DeleteEntitiesByFeatureContext(ctx context.Context, featureID int64) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM entities WHERE feature_id = ?`, featureID)
	if err != nil {
		return fmt.Errorf("failed to delete entities for feature %d: %w", featureID, err)
	}
	return nil
}

// GetEntityCount returns the total number of entities in the database.
func (db *DB) GetEntityCount() (int, error) {
	return db.GetEntityCountContext(context.Background())
}

// GetEntityCountContext returns the total number of entities with context support.
func (db *DB) GetEntityCountContext(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get entity count: %w", err)
	}
	return count, nil
}

func decodeEntityLists(entity *schema.Entity, attrsJSON, relsJSON string) error {
	if attrsJSON != "" && attrsJSON != "null" {
		if err := json.Unmarshal([]byte(attrsJSON), &entity.Attributes); err != nil {
			return fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	} else {
		entity.Attributes = []schema.Attribute{}
	}

	if relsJSON != "" && relsJSON != "null" {
		if err := json.Unmarshal([]byte(relsJSON), &entity.Relationships); err != nil {
			return fmt.Errorf("failed to unmarshal relationships: %w", err)
		}
	} else {
		entity.Relationships = []schema.Relationship{}
	}

	return nil
}
