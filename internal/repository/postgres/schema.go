package postgresrepo

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username  text PRIMARY KEY,
		password  text NOT NULL,
		name      text NOT NULL,
		mail_addr text NOT NULL,
		privilege int  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		id             text    PRIMARY KEY,
		station_num    int     NOT NULL,
		seat_num       int     NOT NULL,
		stations       text[]  NOT NULL,
		prices         int[]   NOT NULL,
		travel_times   int[]   NOT NULL,
		stopover_times int[]   NOT NULL,
		start_time     int     NOT NULL,
		sale_first     int     NOT NULL,
		sale_last      int     NOT NULL,
		type           text    NOT NULL,
		released       boolean NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id       bigint PRIMARY KEY,
		username text   NOT NULL,
		train_id text   NOT NULL,
		day      int    NOT NULL,
		from_idx int    NOT NULL,
		to_idx   int    NOT NULL,
		count    int    NOT NULL,
		price    int    NOT NULL,
		status   text   NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_username_idx ON orders (username)`,
	`CREATE INDEX IF NOT EXISTS orders_key_idx ON orders (train_id, day)`,
}

// EnsureSchema creates the snapshot tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgresrepo.Store.EnsureSchema"

	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
	}

	return nil
}
