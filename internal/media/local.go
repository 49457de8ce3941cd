package media

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/davka-nysa/davka/internal/images"
	"github.com/davka-nysa/davka/internal/models"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// LocalConfig configures the disk store. Files live under Dir and are
// served by this process under BaseURL. The index defaults to <Dir>.db,
// outside the served tree.
type LocalConfig struct {
	Dir     string
	DBPath  string
	BaseURL string
}

// Local keeps uploads on disk and indexes them in SQLite.
type Local struct {
	db      *sql.DB
	dir     string
	baseURL string
	now     func() time.Time
}

// OpenLocal opens (and migrates) the index and creates Dir if needed.
func OpenLocal(cfg LocalConfig) (*Local, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("local media dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = filepath.Clean(cfg.Dir) + ".db"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "/media"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open media index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	l := &Local{db: db, dir: cfg.Dir, baseURL: baseURL, now: time.Now}
	if err := l.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate media index: %w", err)
	}
	return l, nil
}

func (l *Local) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, string(b))
	return err
}

// Dir is the root directory served under the base URL.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Upload writes the file to <dir>/<folder>/<uuid><ext> and indexes it.
func (l *Local) Upload(ctx context.Context, req UploadRequest) (models.Asset, error) {
	data, err := images.ReadLimited(req.Body)
	if err != nil {
		return models.Asset{}, fmt.Errorf("failed to read upload: %w", err)
	}
	info, err := images.Inspect(data)
	if err != nil {
		return models.Asset{}, err
	}

	folder := cleanFolder(req.Folder)
	id := uuid.NewString()
	publicID := path.Join(folder, id)
	rel := publicID + info.Ext()

	full := filepath.Join(l.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return models.Asset{}, fmt.Errorf("failed to create folder: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return models.Asset{}, fmt.Errorf("failed to write file: %w", err)
	}

	created := l.now().UTC()
	format := strings.TrimPrefix(info.Ext(), ".")

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		_ = os.Remove(full)
		return models.Asset{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assets(public_id, path, format, width, height, bytes, created_at) VALUES(?,?,?,?,?,?,?)`,
		publicID, rel, format, info.Width, info.Height, len(data), created.Format(timeLayout),
	); err != nil {
		_ = os.Remove(full)
		return models.Asset{}, fmt.Errorf("failed to index asset: %w", err)
	}
	for _, tag := range req.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO asset_tags(public_id, tag) VALUES(?,?)`, publicID, tag,
		); err != nil {
			_ = os.Remove(full)
			return models.Asset{}, fmt.Errorf("failed to tag asset: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		_ = os.Remove(full)
		return models.Asset{}, err
	}

	slog.Info("Stored upload", "public_id", publicID, "bytes", len(data), "format", format)
	return models.Asset{
		PublicID:  publicID,
		SecureURL: l.baseURL + "/" + rel,
		Width:     info.Width,
		Height:    info.Height,
		Format:    format,
		Bytes:     int64(len(data)),
		Tags:      append([]string(nil), req.Tags...),
		CreatedAt: created,
	}, nil
}

// ListByTag returns up to max assets carrying tag, oldest first.
func (l *Local) ListByTag(ctx context.Context, tag string, max int) ([]models.Asset, error) {
	if max <= 0 {
		max = DefaultPageSize
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT a.public_id, a.path, a.format, a.width, a.height, a.bytes, a.created_at
		   FROM assets a JOIN asset_tags t ON t.public_id = a.public_id
		  WHERE t.tag = ?
		  ORDER BY a.created_at, a.public_id
		  LIMIT ?`, tag, max)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		var (
			a       models.Asset
			rel     string
			created string
		)
		if err := rows.Scan(&a.PublicID, &rel, &a.Format, &a.Width, &a.Height, &a.Bytes, &created); err != nil {
			return nil, err
		}
		a.SecureURL = l.baseURL + "/" + rel
		a.CreatedAt, _ = time.Parse(timeLayout, created)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range assets {
		tags, err := l.tags(ctx, assets[i].PublicID)
		if err != nil {
			return nil, err
		}
		assets[i].Tags = tags
	}
	return assets, nil
}

func (l *Local) tags(ctx context.Context, publicID string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT tag FROM asset_tags WHERE public_id = ? ORDER BY tag`, publicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Delete removes the index entry and the file.
func (l *Local) Delete(ctx context.Context, publicID string) error {
	var rel string
	err := l.db.QueryRowContext(ctx, `SELECT path FROM assets WHERE public_id = ?`, publicID).Scan(&rel)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up asset: %w", err)
	}
	return l.remove(ctx, publicID, rel)
}

func (l *Local) remove(ctx context.Context, publicID, rel string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM asset_tags WHERE public_id = ?`, publicID); err != nil {
		return fmt.Errorf("failed to untag asset: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, `DELETE FROM assets WHERE public_id = ?`, publicID); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	full := filepath.Join(l.dir, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (l *Local) Tags(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT tag FROM asset_tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// PruneTag deletes every asset carrying tag, files included.
func (l *Local) PruneTag(ctx context.Context, tag string) (int, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT a.public_id, a.path FROM assets a
		 JOIN asset_tags t ON t.public_id = a.public_id
		 WHERE t.tag = ?`, tag)
	if err != nil {
		return 0, fmt.Errorf("failed to select assets tagged %q: %w", tag, err)
	}
	type victim struct{ id, rel string }
	var victims []victim
	for rows.Next() {
		var v victim
		if err := rows.Scan(&v.id, &v.rel); err != nil {
			rows.Close()
			return 0, err
		}
		victims = append(victims, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	n := 0
	for _, v := range victims {
		if err := l.remove(ctx, v.id, v.rel); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		return DefaultFolder
	}
	return folder
}
