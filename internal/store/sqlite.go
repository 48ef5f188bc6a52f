package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/intentional-app/intentional/internal/model"
)

// SQLite is a Store backed by a single SQLite database file.
// Timestamps are stored as unix milliseconds.
type SQLite struct {
	db   *sql.DB
	opts Options
}

// OpenSQLite opens the database at dbPath and creates tables if they don't exist.
func OpenSQLite(dbPath string, opts Options) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: the store is single-writer and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLite{db: db, opts: opts.withDefaults()}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_configs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		deep_link TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		delay_seconds INTEGER NOT NULL DEFAULT 60,
		allow_bypass INTEGER NOT NULL DEFAULT 1,
		bypass_after_seconds INTEGER NOT NULL DEFAULT 10,
		question_category TEXT NOT NULL DEFAULT 'default',
		last_launched_ms INTEGER,
		launch_count INTEGER NOT NULL DEFAULT 0,
		created_ms INTEGER NOT NULL,
		updated_ms INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reflection_sessions (
		id TEXT PRIMARY KEY,
		app_id TEXT NOT NULL,
		app_name TEXT NOT NULL,
		question TEXT NOT NULL,
		start_ms INTEGER NOT NULL,
		end_ms INTEGER,
		state_kind TEXT NOT NULL,
		state_phase TEXT NOT NULL DEFAULT '',
		state_cause TEXT NOT NULL DEFAULT '',
		proceeded_to_app INTEGER NOT NULL DEFAULT 0,
		alternative_app TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_app_start ON reflection_sessions (app_id, start_ms);

	CREATE TABLE IF NOT EXISTS global_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS question_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answered_ms INTEGER NOT NULL,
		app_name TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := db.Exec(schema)
	return err
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

const appConfigColumns = `id, name, icon, deep_link, enabled, delay_seconds, allow_bypass,
	bypass_after_seconds, question_category, last_launched_ms, launch_count, created_ms, updated_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanAppConfig(row scanner) (model.AppConfig, error) {
	var c model.AppConfig
	var category string
	var lastLaunched sql.NullInt64
	var created, updated int64
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.DeepLink, &c.Enabled, &c.DelaySeconds, &c.AllowBypass,
		&c.BypassAfterSeconds, &category, &lastLaunched, &c.LaunchCount, &created, &updated)
	if err != nil {
		return model.AppConfig{}, err
	}
	c.QuestionCategory = model.Category(category)
	c.LastLaunched = timePtr(lastLaunched)
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return c, nil
}

// LoadAppConfigs returns every config in creation order.
func (s *SQLite) LoadAppConfigs(ctx context.Context) ([]model.AppConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+appConfigColumns+` FROM app_configs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query app configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	configs := []model.AppConfig{}
	for rows.Next() {
		c, err := scanAppConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app config: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return configs, nil
}

// GetAppConfig retrieves a config by ID.
func (s *SQLite) GetAppConfig(ctx context.Context, id string) (*model.AppConfig, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+appConfigColumns+` FROM app_configs WHERE id = ?`, id)
	c, err := scanAppConfig(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan app config: %w", err)
	}
	return &c, nil
}

// SaveAppConfig inserts cfg or replaces the config with the same ID,
// refreshing its updated time.
func (s *SQLite) SaveAppConfig(ctx context.Context, cfg model.AppConfig) error {
	now := s.opts.Clock.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = cfg.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_configs (id, name, icon, deep_link, enabled, delay_seconds, allow_bypass,
			bypass_after_seconds, question_category, last_launched_ms, launch_count, created_ms, updated_ms, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM app_configs))
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			deep_link = excluded.deep_link,
			enabled = excluded.enabled,
			delay_seconds = excluded.delay_seconds,
			allow_bypass = excluded.allow_bypass,
			bypass_after_seconds = excluded.bypass_after_seconds,
			question_category = excluded.question_category,
			last_launched_ms = excluded.last_launched_ms,
			launch_count = excluded.launch_count,
			updated_ms = ?`,
		cfg.ID, cfg.Name, cfg.Icon, cfg.DeepLink, cfg.Enabled, cfg.DelaySeconds, cfg.AllowBypass,
		cfg.BypassAfterSeconds, string(cfg.QuestionCategory), nullMillis(cfg.LastLaunched), cfg.LaunchCount,
		toMillis(cfg.CreatedAt), toMillis(cfg.UpdatedAt), toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("upsert app config: %w", err)
	}
	return nil
}

// DeleteAppConfig removes the config with the given ID.
func (s *SQLite) DeleteAppConfig(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM app_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete app config: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = `id, app_id, app_name, question, start_ms, end_ms, state_kind, state_phase,
	state_cause, proceeded_to_app, alternative_app`

func scanSession(row scanner) (model.ReflectionSession, error) {
	var sess model.ReflectionSession
	var start int64
	var end sql.NullInt64
	var kind, phase, cause string
	err := row.Scan(&sess.ID, &sess.AppID, &sess.AppName, &sess.Question, &start, &end, &kind, &phase,
		&cause, &sess.ProceededToApp, &sess.AlternativeAppChosen)
	if err != nil {
		return model.ReflectionSession{}, err
	}
	sess.StartTime = fromMillis(start)
	sess.EndTime = timePtr(end)
	sess.State = model.SessionState{
		Kind:  model.StateKind(kind),
		Phase: model.SessionPhase(phase),
		Cause: model.EndCause(cause),
	}
	return sess, nil
}

func (s *SQLite) querySessions(ctx context.Context, query string, args ...any) ([]model.ReflectionSession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []model.ReflectionSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return sessions, nil
}

// LoadReflectionSessions returns all sessions in ascending start order.
func (s *SQLite) LoadReflectionSessions(ctx context.Context) ([]model.ReflectionSession, error) {
	return s.querySessions(ctx, `SELECT `+sessionColumns+` FROM reflection_sessions ORDER BY start_ms ASC, rowid ASC`)
}

// SaveReflectionSession upserts a session by ID and trims the oldest
// sessions beyond the retention limit.
func (s *SQLite) SaveReflectionSession(ctx context.Context, sess model.ReflectionSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reflection_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			app_id = excluded.app_id,
			app_name = excluded.app_name,
			question = excluded.question,
			start_ms = excluded.start_ms,
			end_ms = excluded.end_ms,
			state_kind = excluded.state_kind,
			state_phase = excluded.state_phase,
			state_cause = excluded.state_cause,
			proceeded_to_app = excluded.proceeded_to_app,
			alternative_app = excluded.alternative_app`,
		sess.ID, sess.AppID, sess.AppName, sess.Question, toMillis(sess.StartTime), nullMillis(sess.EndTime),
		string(sess.State.Kind), string(sess.State.Phase), string(sess.State.Cause),
		sess.ProceededToApp, sess.AlternativeAppChosen,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM reflection_sessions WHERE id NOT IN (
			SELECT id FROM reflection_sessions ORDER BY start_ms DESC, rowid DESC LIMIT ?)`,
		s.opts.MaxSessions,
	)
	if err != nil {
		return fmt.Errorf("trim sessions: %w", err)
	}

	return tx.Commit()
}

// LatestSessionForApp returns the most recently started session for appID.
func (s *SQLite) LatestSessionForApp(ctx context.Context, appID string) (*model.ReflectionSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM reflection_sessions
		 WHERE app_id = ?
		 ORDER BY start_ms DESC, rowid DESC
		 LIMIT 1`,
		appID,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

// UsageStats summarises the sessions of appID.
func (s *SQLite) UsageStats(ctx context.Context, appID string) (model.UsageStats, error) {
	sessions, err := s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM reflection_sessions WHERE app_id = ? ORDER BY start_ms ASC`, appID)
	if err != nil {
		return model.UsageStats{}, err
	}
	return ComputeUsageStats(sessions, appID), nil
}

// LoadGlobalSettings returns the saved settings, or the defaults if none were saved.
func (s *SQLite) LoadGlobalSettings(ctx context.Context) (model.GlobalSettings, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM global_settings WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.GlobalSettings{}, fmt.Errorf("query settings: %w", err)
	}

	settings := model.DefaultSettings()
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return model.GlobalSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// SaveGlobalSettings replaces the singleton settings record.
func (s *SQLite) SaveGlobalSettings(ctx context.Context, settings model.GlobalSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO global_settings (id, data) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadQuestionHistory returns history entries oldest first.
func (s *SQLite) LoadQuestionHistory(ctx context.Context) ([]model.QuestionHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question, answered_ms, app_name, completed
		 FROM question_history
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	history := []model.QuestionHistory{}
	for rows.Next() {
		var h model.QuestionHistory
		var answered int64
		if err := rows.Scan(&h.QuestionID, &h.Question, &answered, &h.AppName, &h.Completed); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.AnsweredAt = fromMillis(answered)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return history, nil
}

// RecentQuestions returns the questions shown within the last days days.
func (s *SQLite) RecentQuestions(ctx context.Context, days int) ([]string, error) {
	cutoff := s.opts.Clock.Now().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT question FROM question_history WHERE answered_ms >= ? ORDER BY id ASC`,
		toMillis(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("query recent questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return questions, nil
}

// SaveQuestionHistory appends entry and keeps only the newest entries.
func (s *SQLite) SaveQuestionHistory(ctx context.Context, entry model.QuestionHistory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO question_history (question_id, question, answered_ms, app_name, completed)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.QuestionID, entry.Question, toMillis(entry.AnsweredAt), entry.AppName, entry.Completed,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM question_history WHERE id NOT IN (
			SELECT id FROM question_history ORDER BY id DESC LIMIT ?)`,
		s.opts.MaxHistory,
	)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// ClearAll deletes every record.
func (s *SQLite) ClearAll(ctx context.Context) error {
	for _, table := range []string{"app_configs", "reflection_sessions", "global_settings", "question_history"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

var _ Store = (*SQLite)(nil)
