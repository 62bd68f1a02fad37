package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"teambridge-backend/services/sessions/db"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/sessions")

// TTL after which a session is gone regardless of activity.
const TTL = 24 * time.Hour

// ErrNoSession covers every "please reauthenticate" case: bad
// signature, expired token, missing row, stale row. Callers never
// learn which one it was.
var ErrNoSession = errors.New("no session")

type Session struct {
	Id               string
	Email            string
	Credentials      json.RawMessage
	CachedExtraction json.RawMessage
	CreatedAt        time.Time
	LastUsedAt       time.Time
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	cache  *expirable.LRU[string, db.Session]
	secret []byte
	clock  clockwork.Clock
}

func NewStore(database *sql.DB, secret []byte) *Store {
	return newStore(database, secret, clockwork.NewRealClock())
}

func newStore(database *sql.DB, secret []byte, clock clockwork.Clock) *Store {
	return &Store{
		db:     database,
		qry:    db.New(database),
		cache:  expirable.NewLRU[string, db.Session](2048, nil, time.Minute*15),
		secret: secret,
		clock:  clock,
	}
}

// Create stores a new session for the given credentials and returns
// its signed bearer token.
func (s *Store) Create(ctx context.Context, email string, credentials json.RawMessage) (string, error) {
	ctx, span := tracer.Start(ctx, "store:Create")
	defer span.End()

	id := uuid.NewString()
	now := s.clock.Now()

	err := s.qry.CreateSession(ctx, db.CreateSessionParams{
		ID:          id,
		Email:       email,
		Credentials: string(credentials),
		CreatedAt:   now.UnixMilli(),
		LastUsedAt:  now.UnixMilli(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert session row")
		return "", err
	}

	token, err := signToken(s.secret, id, now, TTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sign session token")
		return "", err
	}
	return token, nil
}

// Get resolves a bearer token into its session. Both the token itself
// and the backing row must be valid and fresh; either failing means
// "no session", not an error. Stale rows are deleted on the way out.
func (s *Store) Get(ctx context.Context, token string) (Session, error) {
	ctx, span := tracer.Start(ctx, "store:Get")
	defer span.End()

	now := s.clock.Now()

	id, err := verifyToken(s.secret, token, now)
	if err != nil {
		span.SetStatus(codes.Error, "token rejected")
		return Session{}, ErrNoSession
	}

	row, cached := s.cache.Get(id)
	if !cached {
		row, err = s.qry.GetSession(ctx, id)
		if err == sql.ErrNoRows {
			return Session{}, ErrNoSession
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read session row")
			return Session{}, err
		}
	}

	if now.UnixMilli()-row.CreatedAt > TTL.Milliseconds() {
		// lazy expiry: the row outlived its TTL, drop it on access
		s.cache.Remove(id)
		err := s.qry.DeleteSession(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "failed to delete expired session", "id", id, "err", err)
		}
		return Session{}, ErrNoSession
	}

	s.cache.Add(id, row)
	return sessionFromRow(row), nil
}

// Touch refreshes the last-used timestamp of a live session.
func (s *Store) Touch(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	now := s.clock.Now().UnixMilli()
	err = s.qry.TouchSession(ctx, db.TouchSessionParams{
		LastUsedAt: now,
		ID:         session.Id,
	})
	if err != nil {
		return err
	}
	if row, ok := s.cache.Get(session.Id); ok {
		row.LastUsedAt = now
		s.cache.Add(session.Id, row)
	}
	return nil
}

// SetCachedExtraction attaches (or clears, when data is nil) the cached
// extraction result of a session.
func (s *Store) SetCachedExtraction(ctx context.Context, token string, data json.RawMessage) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	value := sql.NullString{}
	if data != nil {
		value = sql.NullString{String: string(data), Valid: true}
	}
	err = s.qry.SetCachedExtraction(ctx, db.SetCachedExtractionParams{
		CachedExtraction: value,
		ID:               session.Id,
	})
	if err != nil {
		return err
	}
	s.cache.Remove(session.Id)
	return nil
}

// Delete drops a session on explicit disconnect. Deleting a session
// that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	id, err := verifyToken(s.secret, token, s.clock.Now())
	if err != nil {
		return nil
	}
	s.cache.Remove(id)
	return s.qry.DeleteSession(ctx, id)
}

// SweepExpired proactively removes every session past its TTL.
func (s *Store) SweepExpired(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-TTL).UnixMilli()
	s.cache.Purge()
	return s.qry.DeleteSessionsBefore(ctx, cutoff)
}

// StartSweepDaemon runs SweepExpired on a timer until the context is
// cancelled. Lazy expiry already guarantees correctness, the daemon
// just keeps the table from accumulating dead rows.
func (s *Store) StartSweepDaemon(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "start daemon", "task", fmt.Sprintf("sweep expired sessions every %s", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := s.SweepExpired(ctx)
				if err != nil {
					slog.WarnContext(ctx, "failed to sweep expired sessions", "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func sessionFromRow(row db.Session) Session {
	session := Session{
		Id:          row.ID,
		Email:       row.Email,
		Credentials: json.RawMessage(row.Credentials),
		CreatedAt:   time.UnixMilli(row.CreatedAt),
		LastUsedAt:  time.UnixMilli(row.LastUsedAt),
	}
	if row.CachedExtraction.Valid {
		session.CachedExtraction = json.RawMessage(row.CachedExtraction.String)
	}
	return session
}
