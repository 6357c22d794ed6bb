package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railbook/rail-go/internal/domain"
)

// SnapshotRepo replaces and reads whole-entity snapshots. Replace
// methods are truncate-and-insert; callers run them inside one
// transaction (see uow) so a crash mid-flush never leaves a half
// snapshot.
type SnapshotRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SnapshotRepo) With(db DB) *SnapshotRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SnapshotRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *SnapshotRepo) ReplaceUsers(ctx context.Context, users []domain.User) error {
	const op = "postgresrepo.SnapshotRepo.ReplaceUsers"

	db := r.handle()

	if _, err := db.Exec(ctx, `TRUNCATE users`); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(
			`INSERT INTO users(username, password, name, mail_addr, privilege)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.Username, u.Password, u.Name, u.MailAddr, u.Privilege,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func (r *SnapshotRepo) LoadUsers(ctx context.Context) ([]domain.User, error) {
	const op = "postgresrepo.SnapshotRepo.LoadUsers"

	rows, err := r.handle().Query(ctx,
		`SELECT username, password, name, mail_addr, privilege FROM users`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.Password, &u.Name, &u.MailAddr, &u.Privilege); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return users, nil
}

func (r *SnapshotRepo) ReplaceTrains(ctx context.Context, trains []domain.Train) error {
	const op = "postgresrepo.SnapshotRepo.ReplaceTrains"

	db := r.handle()

	if _, err := db.Exec(ctx, `TRUNCATE trains`); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, t := range trains {
		batch.Queue(
			`INSERT INTO trains(
				id, station_num, seat_num, stations, prices, travel_times,
				stopover_times, start_time, sale_first, sale_last, type, released)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			t.ID, t.StationNum, t.SeatNum, t.Stations,
			toInt32s(t.Prices), toInt32s(t.TravelTimes), toInt32s(t.StopoverTimes),
			t.StartTime, t.SaleFirst, t.SaleLast, string(t.Type), t.Released,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func (r *SnapshotRepo) LoadTrains(ctx context.Context) ([]domain.Train, error) {
	const op = "postgresrepo.SnapshotRepo.LoadTrains"

	rows, err := r.handle().Query(ctx,
		`SELECT id, station_num, seat_num, stations, prices, travel_times,
		        stopover_times, start_time, sale_first, sale_last, type, released
		 FROM trains`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}
	defer rows.Close()

	var trains []domain.Train
	for rows.Next() {
		var t domain.Train
		var prices, travel, stopover []int32
		var typ string
		if err := rows.Scan(
			&t.ID, &t.StationNum, &t.SeatNum, &t.Stations, &prices, &travel,
			&stopover, &t.StartTime, &t.SaleFirst, &t.SaleLast, &typ, &t.Released,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		t.Prices = toInts(prices)
		t.TravelTimes = toInts(travel)
		t.StopoverTimes = toInts(stopover)
		if typ != "" {
			t.Type = typ[0]
		}
		trains = append(trains, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return trains, nil
}

func (r *SnapshotRepo) ReplaceOrders(ctx context.Context, orders []domain.Order) error {
	const op = "postgresrepo.SnapshotRepo.ReplaceOrders"

	db := r.handle()

	if _, err := db.Exec(ctx, `TRUNCATE orders`); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, o := range orders {
		batch.Queue(
			`INSERT INTO orders(id, username, train_id, day, from_idx, to_idx, count, price, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			o.ID, o.Username, o.TrainID, o.Day, o.FromIdx, o.ToIdx, o.Count, o.Price, string(o.Status),
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func (r *SnapshotRepo) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "postgresrepo.SnapshotRepo.LoadOrders"

	rows, err := r.handle().Query(ctx,
		`SELECT id, username, train_id, day, from_idx, to_idx, count, price, status
		 FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(
			&o.ID, &o.Username, &o.TrainID, &o.Day, &o.FromIdx, &o.ToIdx,
			&o.Count, &o.Price, &status,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return orders, nil
}

// Truncate clears every snapshot table; backs the console's clean
// command when storage is configured.
func (r *SnapshotRepo) Truncate(ctx context.Context) error {
	const op = "postgresrepo.SnapshotRepo.Truncate"

	if _, err := r.handle().Exec(ctx, `TRUNCATE users, trains, orders`); err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func toInt32s(xs []int) []int32 {
	out := make([]int32, len(xs))
	for i, x := range xs {
		out[i] = int32(x)
	}
	return out
}

func toInts(xs []int32) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}
