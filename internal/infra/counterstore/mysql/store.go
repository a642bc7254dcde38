package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Store keeps usage counters in MySQL. Increments are a single upsert so
// concurrent requests never lose an update.
//
// Schema:
//
//	CREATE TABLE api_usage (
//	  day     CHAR(10)     NOT NULL,
//	  counter VARCHAR(64)  NOT NULL,
//	  value   DOUBLE       NOT NULL DEFAULT 0,
//	  PRIMARY KEY (day, counter)
//	);
type Store struct {
	db *sql.DB
}

func Connect(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, day, key string) (int, error) {
	const q = `SELECT value FROM api_usage WHERE day=? AND counter=? LIMIT 1;`
	var v float64
	err := s.db.QueryRowContext(ctx, q, day, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (s *Store) Increment(ctx context.Context, day, key string, delta int) error {
	return s.add(ctx, day, key, float64(delta))
}

func (s *Store) AddCost(ctx context.Context, day, key string, cost float64) error {
	return s.add(ctx, day, key, cost)
}

func (s *Store) add(ctx context.Context, day, key string, delta float64) error {
	const q = `
INSERT INTO api_usage (day, counter, value)
VALUES (?,?,?)
ON DUPLICATE KEY UPDATE value = value + VALUES(value);
`
	_, err := s.db.ExecContext(ctx, q, day, key, delta)
	return err
}

func (s *Store) DayUsage(ctx context.Context, day string) (map[string]float64, error) {
	const q = `SELECT counter, value FROM api_usage WHERE day=?;`
	rows, err := s.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var counter string
		var value float64
		if err := rows.Scan(&counter, &value); err != nil {
			return nil, err
		}
		out[counter] = value
	}
	return out, rows.Err()
}

func (s *Store) ResetDay(ctx context.Context, day string) error {
	const q = `DELETE FROM api_usage WHERE day=?;`
	_, err := s.db.ExecContext(ctx, q, day)
	return err
}
