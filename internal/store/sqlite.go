package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"vestnik/internal/submission"
	"vestnik/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339Nano
)

type sqliteStore struct {
	db  *sql.DB
	loc *time.Location
	log logx.Logger
}

// Open opens (creating if needed) the SQLite database and applies the
// embedded migrations. loc is used to interpret stored publish dates.
func Open(cfg Config, loc *time.Location, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if loc == nil {
		loc = time.Local
	}
	st := &sqliteStore{db: db, loc: loc, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Insert(ctx context.Context, sub *submission.Submission) (int64, error) {
	if utf8.RuneCountInString(sub.Text) > submission.MaxTextCeiling {
		return 0, ErrTextTooLong
	}
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	status := sub.Status
	if status == "" {
		status = submission.StatusPending
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions(user_id, username, type, subtype, from_name, to_name, congrat_tag, text, status, publish_date, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		sub.UserID, nullStr(sub.Username), string(sub.Type), nullStr(string(sub.Subtype)),
		nullStr(sub.FromName), nullStr(sub.ToName), nullStr(sub.CongratTag),
		sub.Text, string(status), sub.PublishDate.Format(dateLayout), createdAt.Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	sub.ID = id
	sub.Status = status
	sub.CreatedAt = createdAt
	return id, nil
}

const selectCols = `id, user_id, COALESCE(username,''), type, COALESCE(subtype,''),
	COALESCE(from_name,''), COALESCE(to_name,''), COALESCE(congrat_tag,''),
	text, status, publish_date, created_at, published_at`

func (s *sqliteStore) GetByID(ctx context.Context, id int64) (*submission.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM submissions WHERE id = ?`, id)
	sub, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (s *sqliteStore) ListApprovedUnpublished(ctx context.Context) ([]*submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectCols+` FROM submissions
		 WHERE status = ? AND published_at IS NULL
		 ORDER BY id`, string(submission.StatusApproved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*submission.Submission
	for rows.Next() {
		sub, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *sqliteStore) UpdateStatus(ctx context.Context, id int64, to submission.Status) error {
	if to != submission.StatusApproved && to != submission.StatusRejected {
		return fmt.Errorf("store: invalid transition to %q", to)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(submission.StatusPending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrDecided
	}
	return nil
}

func (s *sqliteStore) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = ?, published_at = ?
		 WHERE id = ? AND status = ? AND published_at IS NULL`,
		string(submission.StatusPublished), at.Format(timeLayout),
		id, string(submission.StatusApproved))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyPublished
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *sqliteStore) scan(row scanner) (*submission.Submission, error) {
	var (
		sub         submission.Submission
		typ, st     string
		subtype     string
		publishDate string
		createdAt   string
		publishedAt sql.NullString
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Username, &typ, &subtype,
		&sub.FromName, &sub.ToName, &sub.CongratTag,
		&sub.Text, &st, &publishDate, &createdAt, &publishedAt)
	if err != nil {
		return nil, err
	}
	sub.Type = submission.Type(typ)
	sub.Subtype = submission.Subtype(subtype)
	sub.Status = submission.Status(st)

	if sub.PublishDate, err = time.ParseInLocation(dateLayout, publishDate, s.loc); err != nil {
		return nil, fmt.Errorf("store: bad publish_date %q: %w", publishDate, err)
	}
	if sub.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("store: bad created_at %q: %w", createdAt, err)
	}
	if publishedAt.Valid {
		t, err := time.Parse(timeLayout, publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("store: bad published_at %q: %w", publishedAt.String, err)
		}
		sub.PublishedAt = &t
	}
	return &sub, nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
