package service

import (
	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/ledger"
	"github.com/railbook/rail-go/internal/orderbook"
	redisx "github.com/railbook/rail-go/internal/redis"
	redisrepo "github.com/railbook/rail-go/internal/repository/redis"
	"github.com/railbook/rail-go/internal/schedule"
	"github.com/railbook/rail-go/internal/service/account"
	"github.com/railbook/rail-go/internal/service/admin"
	"github.com/railbook/rail-go/internal/service/query"
	"github.com/railbook/rail-go/internal/service/reservation"
)

type Services struct {
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
	Account     *account.Service
}

type Config struct {
	Query query.Config
}

func NewServices(
	cat *catalog.Catalog,
	led *ledger.SeatLedger,
	book *orderbook.OrderBook,
	proj *schedule.Projector,
	cache *redisrepo.Cache,
	pubsub *redisx.TrainsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Reservation: reservation.New(cat, led, book, proj, cache, pubsub, limiter),
		Query:       query.New(cat, book, proj, cache, cfg.Query),
		Admin:       admin.New(cat, pubsub),
		Account:     account.New(),
	}
}

// Reset wipes every store: users, trains, seats and orders. Backs the
// console's clean command.
func (s *Services) Reset() {
	s.Account.Reset()
	s.Admin.Reset()
	s.Reservation.Reset()
}
