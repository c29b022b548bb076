package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"floorlink/internal/content"
	"floorlink/internal/domain"
	"floorlink/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath. ":memory:" gives a
// private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if dbPath == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		hash TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		size INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		content_handle TEXT,
		content_kind TEXT,
		content_name TEXT,
		content_page INTEGER,
		document_hash TEXT REFERENCES documents(hash),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS items (
		project TEXT NOT NULL,
		id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		label TEXT NOT NULL,
		type TEXT NOT NULL,
		position_x REAL NOT NULL DEFAULT 0,
		position_y REAL NOT NULL DEFAULT 0,
		document_x REAL NOT NULL DEFAULT 0,
		document_y REAL NOT NULL DEFAULT 0,
		properties JSON,
		PRIMARY KEY (project, id),
		FOREIGN KEY (project) REFERENCES projects(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_items_project_ordinal ON items(project, ordinal);
	CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveProject writes a project, replacing any previous version with the
// same name. The document bytes, if present, are stored once under their
// content fingerprint.
func (r *Repository) SaveProject(ctx context.Context, name string, p *domain.Project) error {
	if name == "" {
		return fmt.Errorf("project name is empty")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var docHash sql.NullString
	if len(p.Document) > 0 {
		hash := content.Fingerprint(p.Document)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (hash, data, size, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hash, p.Document, len(p.Document), now)
		if err != nil {
			return fmt.Errorf("store document: %w", err)
		}
		docHash = stringToNull(hash)
	}

	var handle, kind, cname sql.NullString
	var page sql.NullInt64
	if p.Content != nil {
		handle = sql.NullString{String: p.Content.Handle, Valid: true}
		kind = stringToNull(string(p.Content.Kind))
		cname = stringToNull(p.Content.Name)
		page = sql.NullInt64{Int64: int64(p.Content.Page), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (name, content_handle, content_kind, content_name, content_page, document_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content_handle = excluded.content_handle,
			content_kind = excluded.content_kind,
			content_name = excluded.content_name,
			content_page = excluded.content_page,
			document_hash = excluded.document_hash,
			updated_at = excluded.updated_at
	`, name, handle, kind, cname, page, docHash, now, now)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE project = ?`, name); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (project, `+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range p.Items {
		args, err := itemInsertArgs(name, i, item)
		if err != nil {
			return fmt.Errorf("item %s: %w", item.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}

	if err := r.pruneDocuments(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadProject reads a project. It returns repository.ErrNotFound when no
// project has that name.
func (r *Repository) LoadProject(ctx context.Context, name string) (*domain.Project, error) {
	var pr projectRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE name = ?`, name,
	).Scan(pr.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	p := &domain.Project{Version: domain.ProjectVersion, Content: pr.contentRef()}

	if pr.DocumentHash.Valid {
		err := r.db.QueryRowContext(ctx,
			`SELECT data FROM documents WHERE hash = ?`, pr.DocumentHash.String,
		).Scan(&p.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to load document: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE project = ? ORDER BY ordinal`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	p.Items = []domain.Item{}
	for rows.Next() {
		var row itemRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.ID, err)
		}
		p.Items = append(p.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, most recently updated first.
func (r *Repository) ListProjects(ctx context.Context) ([]repository.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name, p.content_handle, p.content_kind, p.content_name,
			p.content_page, p.document_hash, p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM items i WHERE i.project = p.name)
		FROM projects p
		ORDER BY p.updated_at DESC, p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []repository.ProjectSummary
	for rows.Next() {
		var pr projectRow
		var count int
		if err := rows.Scan(append(pr.scanArgs(), &count)...); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, repository.ProjectSummary{
			Name:      pr.Name,
			Items:     count,
			Content:   pr.contentRef(),
			CreatedAt: pr.CreatedAt,
			UpdatedAt: pr.UpdatedAt,
		})
	}
	return out, rows.Err()
}

// DeleteProject removes a project and its items. Documents no other project
// references are dropped too.
func (r *Repository) DeleteProject(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	// Items go by cascade; delete explicitly in case foreign keys are off.
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE project = ?`, name); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if err := r.pruneDocuments(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// DocumentCount returns the number of stored document blobs.
func (r *Repository) DocumentCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (r *Repository) pruneDocuments(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM documents WHERE hash NOT IN (
			SELECT document_hash FROM projects WHERE document_hash IS NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("prune documents: %w", err)
	}
	return nil
}
