package credentials

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type settingRecord struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// SQLiteCache stores credentials in a key/value settings table.
type SQLiteCache struct {
	db *bun.DB
}

// OpenSQLiteCache opens (creating if needed) the SQLite database at dsn.
// dsn may be a file path or a sqlite3 URI such as "file:x?mode=memory".
func OpenSQLiteCache(ctx context.Context, dsn string) (*SQLiteCache, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite cache: database path is required")
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cache, err := NewSQLiteCache(ctx, bun.NewDB(sqlDB, sqlitedialect.New()))
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return cache, nil
}

// NewSQLiteCache wraps an existing bun database and ensures the settings
// table exists.
func NewSQLiteCache(ctx context.Context, db *bun.DB) (*SQLiteCache, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite cache: bun db is required")
	}
	if _, err := db.NewCreateTable().
		Model((*settingRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Load implements Store.
func (c *SQLiteCache) Load(ctx context.Context) (Credentials, bool, error) {
	var records []settingRecord
	err := c.db.NewSelect().
		Model(&records).
		Where(`"s"."key" IN (?)`, bun.In([]string{KeyUsername, KeyPassword})).
		Scan(ctx)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("load settings: %w", err)
	}

	var creds Credentials
	for _, record := range records {
		switch record.Key {
		case KeyUsername:
			creds.Username = record.Value
		case KeyPassword:
			creds.PasswordHash = record.Value
		}
	}
	if creds.IsZero() {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

// Save implements Store.
func (c *SQLiteCache) Save(ctx context.Context, creds Credentials) error {
	records := []settingRecord{
		{Key: KeyUsername, Value: creds.Username},
		{Key: KeyPassword, Value: creds.PasswordHash},
	}
	_, err := c.db.NewInsert().
		Model(&records).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Clear removes the cached credentials.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.NewDelete().
		Model((*settingRecord)(nil)).
		Where(`"key" IN (?)`, bun.In([]string{KeyUsername, KeyPassword})).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Compile-time assertion that SQLiteCache implements Store.
var _ Store = (*SQLiteCache)(nil)
