package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

const (
	getDocument = `SELECT fields FROM documents WHERE collection = $1 AND id = $2`

	deleteDocument = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	scanDocuments = `SELECT id, fields FROM documents WHERE collection = $1`

	// документ с нечитаемой датой валит весь запрос, это и есть "ordering unavailable"
	orderedScanDocuments = `SELECT id, fields FROM documents WHERE collection = $1
ORDER BY (fields->>$2)::timestamptz ASC`
)

type PostgresConfig struct {
	ConnString     string
	MaxConnections int32
	MigrationsDir  string
}

// Postgres keeps documents as JSONB rows in a single table. Values round-trip through
// JSON, so dates come back as RFC 3339 strings.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, conf PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(conf.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if conf.MaxConnections <= 0 {
		poolCfg.MaxConns = 5
	} else {
		poolCfg.MaxConns = conf.MaxConnections
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	// Таблица documents создаётся goose через database/sql на базе pgx stdlib.
	sqlDB := stdlib.OpenDB(*poolCfg.ConnConfig)
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, conf.MigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Collection(name string) Collection {
	return &postgresCollection{pool: p.Pool, name: name}
}

func (p *Postgres) Ping(ctx context.Context) error {
	var result int
	if err := p.Pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.Pool != nil {
		p.Pool.Close()
	}
	return nil
}

type postgresCollection struct {
	pool *pgxpool.Pool
	name string
}

func (c *postgresCollection) Get(ctx context.Context, id string) (*Snapshot, error) {
	var raw []byte
	err := c.pool.QueryRow(ctx, getDocument, c.name, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Snapshot{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	return &Snapshot{ID: id, Exists: true, Data: fields}, nil
}

func (c *postgresCollection) Set(ctx context.Context, id string, fields Fields) error {
	plain, stamps := splitSentinels(fields)
	body, err := json.Marshal(plain)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	expr, args := stampExpr("$3::jsonb", 4, stamps)
	query := `INSERT INTO documents (collection, id, fields, updated_at)
VALUES ($1, $2, ` + expr + `, now())
ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()`

	_, err = c.pool.Exec(ctx, query, append([]any{c.name, id, body}, args...)...)
	return err
}

func (c *postgresCollection) Update(ctx context.Context, id string, fields Fields) error {
	plain, stamps := splitSentinels(fields)
	body, err := json.Marshal(plain)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	expr, args := stampExpr("(fields || $3::jsonb)", 4, stamps)
	query := `UPDATE documents SET fields = ` + expr + `, updated_at = now()
WHERE collection = $1 AND id = $2`

	tag, err := c.pool.Exec(ctx, query, append([]any{c.name, id, body}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Delete(ctx context.Context, id string) error {
	_, err := c.pool.Exec(ctx, deleteDocument, c.name, id)
	return err
}

func (c *postgresCollection) OrderedScan(ctx context.Context, field string) ([]*Snapshot, error) {
	snaps, err := c.query(ctx, orderedScanDocuments, c.name, field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderingUnavailable, err)
	}
	return snaps, nil
}

func (c *postgresCollection) Scan(ctx context.Context) ([]*Snapshot, error) {
	return c.query(ctx, scanDocuments, c.name)
}

func (c *postgresCollection) query(ctx context.Context, sql string, args ...any) ([]*Snapshot, error) {
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Snapshot, 0)
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		out = append(out, &Snapshot{ID: id, Exists: true, Data: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// stampExpr wraps base in one jsonb_set per sentinel key, each set to the database
// clock. Keys are bound starting at placeholder n.
func stampExpr(base string, n int, stamps []string) (string, []any) {
	expr := base
	args := make([]any, 0, len(stamps))
	for _, k := range stamps {
		var sb strings.Builder
		sb.WriteString("jsonb_set(")
		sb.WriteString(expr)
		sb.WriteString(", ARRAY[$")
		sb.WriteString(strconv.Itoa(n))
		sb.WriteString("::text], to_jsonb(now()))")
		expr = sb.String()
		args = append(args, k)
		n++
	}
	return expr, args
}

func decodeFields(raw []byte) (Fields, error) {
	fields := Fields{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}
