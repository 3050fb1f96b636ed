package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"trigger_bot/internal/model"
	"trigger_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateRule inserts a new rule and populates its ID and CreatedAt.
func (s *SQLite) CreateRule(ctx context.Context, rule *model.Rule) error {
	channels, err := encodeChannelIDs(rule.ChannelIDs)
	if err != nil {
		return err
	}
	keywords, err := encodeStrings(rule.Keywords)
	if err != nil {
		return err
	}
	exceptions, err := encodeStrings(rule.Exceptions)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rules (guild_id, channel_ids, keywords, response, exceptions, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rule.GuildID, channels, keywords, rule.Response, exceptions, boolToInt(rule.Enabled), now,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rule.ID = id
	rule.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// ListEnabledRules returns all enabled rules across all guilds, ordered by ID.
// The order is the snapshot order used for first-match-wins evaluation.
func (s *SQLite) ListEnabledRules(ctx context.Context) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, guild_id, channel_ids, keywords, response, exceptions, enabled, created_at
		 FROM rules WHERE enabled = 1 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query enabled rules: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanRules(rows)
}

// ListRules returns all rules belonging to the given guild, ordered by ID.
func (s *SQLite) ListRules(ctx context.Context, guildID int64) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, guild_id, channel_ids, keywords, response, exceptions, enabled, created_at
		 FROM rules WHERE guild_id = ? ORDER BY id`, guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query guild rules: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanRules(rows)
}

// DeleteRule removes a rule only if it belongs to the given guild.
// Returns the number of rows deleted; zero means no matching rule existed.
func (s *SQLite) DeleteRule(ctx context.Context, id, guildID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rules WHERE id = ? AND guild_id = ?`, id, guildID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// DeleteAllRules removes every rule belonging to the given guild.
func (s *SQLite) DeleteAllRules(ctx context.Context, guildID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, fmt.Errorf("delete guild rules: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Channel IDs are stored as JSON arrays of decimal strings so that 64-bit
// values survive any text-based transport without precision loss.
func encodeChannelIDs(ids []int64) (string, error) {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(id, 10)
	}
	data, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("encode channel ids: %w", err)
	}
	return string(data), nil
}

func decodeChannelIDs(data string) ([]int64, error) {
	var strs []string
	if err := json.Unmarshal([]byte(data), &strs); err != nil {
		return nil, fmt.Errorf("decode channel ids: %w", err)
	}
	if len(strs) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(strs))
	for i, s := range strs {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode channel id %q: %w", s, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode strings: %w", err)
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("decode strings: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRule(row scannable) (*model.Rule, error) {
	var r model.Rule
	var channels, keywords, exceptions string
	var enabled int
	var created sql.NullString
	err := row.Scan(&r.ID, &r.GuildID, &channels, &keywords, &r.Response, &exceptions, &enabled, &created)
	if err != nil {
		return nil, fmt.Errorf("scan rule: %w", err)
	}
	if r.ChannelIDs, err = decodeChannelIDs(channels); err != nil {
		return nil, err
	}
	if r.Keywords, err = decodeStrings(keywords); err != nil {
		return nil, err
	}
	if r.Exceptions, err = decodeStrings(exceptions); err != nil {
		return nil, err
	}
	r.Enabled = enabled == 1
	if created.Valid {
		r.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &r, nil
}

func scanRules(rows *sql.Rows) ([]model.Rule, error) {
	var rules []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}
