package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NotifyChannel carries the root collection name of every committed update.
const NotifyChannel = "documents_changed"

// PostgresStore keeps one JSONB document per top-level collection in the
// documents table (see database.Migrate).
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger

	mu         sync.Mutex
	subs       map[int]*subscription
	nextID     int
	stopListen context.CancelFunc
}

func NewPostgresStore(pool *pgxpool.Pool, log *zap.Logger) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		log:  log.With(zap.String("component", "pgstore")),
		subs: make(map[int]*subscription),
	}
}

func (s *PostgresStore) Get(ctx context.Context, path string) (Snapshot, error) {
	segs, err := SplitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	if len(segs) == 0 {
		root, err := s.readAll(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{value: root}, nil
	}
	doc, err := readRoot(ctx, s.pool, segs[0], false)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Key: lastSegment(segs), value: valueAt(doc, segs[1:])}, nil
}

func (s *PostgresStore) Update(ctx context.Context, values map[string]any) error {
	updates, err := prepareUpdate(values)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	byRoot := make(map[string][]pathValue)
	for _, u := range updates {
		byRoot[u.segs[0]] = append(byRoot[u.segs[0]], u)
	}
	roots := make([]string, 0, len(byRoot))
	for r := range byRoot {
		roots = append(roots, r)
	}
	// lock rows in a stable order so concurrent updates cannot deadlock
	sort.Strings(roots)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, root := range roots {
		// FOR UPDATE cannot lock a row that does not exist yet
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, root); err != nil {
			return fmt.Errorf("lock %s: %w", root, err)
		}
		doc, err := readRoot(ctx, tx, root, true)
		if err != nil {
			return err
		}
		var cur any = doc
		for _, u := range byRoot[root] {
			if len(u.segs) == 1 {
				cur = u.value
				continue
			}
			cur = setAt(cur, u.segs[1:], u.value)
		}
		if err := writeRoot(ctx, tx, root, cur); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, root); err != nil {
			return fmt.Errorf("notify %s: %w", root, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

func (s *PostgresStore) Subscribe(path string, onChange func(Snapshot)) (func(), error) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	snap, err := s.Get(ctx, path)
	cancel()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscription{segs: segs, onChange: onChange}
	if s.stopListen == nil {
		lctx, stop := context.WithCancel(context.Background())
		s.stopListen = stop
		go s.listen(lctx)
	}
	s.mu.Unlock()

	onChange(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// Close stops the notification listener. The pool is owned by the caller.
func (s *PostgresStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopListen != nil {
		s.stopListen()
		s.stopListen = nil
	}
}

func (s *PostgresStore) listen(ctx context.Context) {
	for ctx.Err() == nil {
		err := s.listenOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		s.log.Warn("listener dropped, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.dispatch(ctx, n.Payload)
	}
}

func (s *PostgresStore) dispatch(ctx context.Context, root string) {
	s.mu.Lock()
	var targets []*subscription
	for _, sub := range s.subs {
		if len(sub.segs) == 0 || sub.segs[0] == root {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		snap, err := s.Get(ctx, JoinPath(sub.segs...))
		if err != nil {
			s.log.Warn("re-read after notify failed", zap.String("root", root), zap.Error(err))
			continue
		}
		sub.onChange(snap)
	}
}

func (s *PostgresStore) readAll(ctx context.Context) (any, error) {
	rows, err := s.pool.Query(ctx, `SELECT root, value FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var root string
		var raw []byte
		if err := rows.Scan(&root, &raw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", root, err)
		}
		out[root] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func readRoot(ctx context.Context, q querier, root string, forUpdate bool) (any, error) {
	query := `SELECT value FROM documents WHERE root = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	err := q.QueryRow(ctx, query, root).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", root, err)
	}
	return v, nil
}

func writeRoot(ctx context.Context, tx pgx.Tx, root string, value any) error {
	if value == nil {
		if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE root = $1`, root); err != nil {
			return fmt.Errorf("delete %s: %w", root, err)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (root, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (root) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		root, raw)
	if err != nil {
		return fmt.Errorf("write %s: %w", root, err)
	}
	return nil
}
