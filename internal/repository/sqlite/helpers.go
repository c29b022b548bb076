package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"floorlink/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// propertiesToNull encodes ordered properties, storing NULL for none.
func propertiesToNull(p domain.Properties) (sql.NullString, error) {
	if len(p) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the items table:
// 1. Add field to itemRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update itemColumns constant - APPEND to end
// 4. Update toDomain() and itemInsertArgs()
// 5. Add the column in migrate() with addColumnIfNotExists()
//
// CRITICAL: column order must match between itemColumns, scanArgs() and
// itemInsertArgs().

// ============================================================================
// Item Row Scanner
// ============================================================================

// itemRow holds all columns from an item query for scanning
type itemRow struct {
	ID             string
	Ordinal        int
	Label          string
	Type           string
	PositionX      float64
	PositionY      float64
	DocumentX      float64
	DocumentY      float64
	PropertiesJSON sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match itemColumns order exactly.
func (r *itemRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,             // 1
		&r.Ordinal,        // 2
		&r.Label,          // 3
		&r.Type,           // 4
		&r.PositionX,      // 5
		&r.PositionY,      // 6
		&r.DocumentX,      // 7
		&r.DocumentY,      // 8
		&r.PropertiesJSON, // 9
	}
}

// toDomain converts the scanned row to a domain.Item
func (r *itemRow) toDomain() (domain.Item, error) {
	item := domain.Item{
		ID:               r.ID,
		Label:            r.Label,
		Type:             r.Type,
		Position:         domain.Pt(r.PositionX, r.PositionY),
		DocumentPosition: domain.Pt(r.DocumentX, r.DocumentY),
	}
	if err := unmarshalJSONField(r.PropertiesJSON, &item.Properties); err != nil {
		return domain.Item{}, fmt.Errorf("unmarshal properties: %w", err)
	}
	return item, nil
}

// itemColumns returns the SELECT column list for item queries
const itemColumns = `id, ordinal, label, type, position_x, position_y,
	document_x, document_y, properties`

// itemInsertArgs returns project plus the itemColumns values.
func itemInsertArgs(project string, ordinal int, item domain.Item) ([]interface{}, error) {
	props, err := propertiesToNull(item.Properties)
	if err != nil {
		return nil, fmt.Errorf("marshal properties: %w", err)
	}
	return []interface{}{
		project,
		item.ID,
		ordinal,
		item.Label,
		item.Type,
		item.Position.X,
		item.Position.Y,
		item.DocumentPosition.X,
		item.DocumentPosition.Y,
		props,
	}, nil
}

// ============================================================================
// Project Row Scanner
// ============================================================================

type projectRow struct {
	Name          string
	ContentHandle sql.NullString
	ContentKind   sql.NullString
	ContentName   sql.NullString
	ContentPage   sql.NullInt64
	DocumentHash  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *projectRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Name,
		&r.ContentHandle,
		&r.ContentKind,
		&r.ContentName,
		&r.ContentPage,
		&r.DocumentHash,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

const projectColumns = `name, content_handle, content_kind, content_name,
	content_page, document_hash, created_at, updated_at`

func (r *projectRow) contentRef() *domain.ContentRef {
	if !r.ContentHandle.Valid {
		return nil
	}
	return &domain.ContentRef{
		Handle: r.ContentHandle.String,
		Kind:   domain.ContentKind(nullToString(r.ContentKind)),
		Name:   nullToString(r.ContentName),
		Page:   int(r.ContentPage.Int64),
	}
}
