package service

import (
	"log/slog"

	"github.com/fianchetto/clubtix/internal/email"
	redisx "github.com/fianchetto/clubtix/internal/redis"
	postgres "github.com/fianchetto/clubtix/internal/repository/postgres"
	redis "github.com/fianchetto/clubtix/internal/repository/redis"
	"github.com/fianchetto/clubtix/internal/service/admin"
	"github.com/fianchetto/clubtix/internal/service/booking"
	"github.com/fianchetto/clubtix/internal/service/discounts"
	"github.com/fianchetto/clubtix/internal/service/mailer"
	"github.com/fianchetto/clubtix/internal/service/messaging"
	"github.com/fianchetto/clubtix/internal/service/query"
	"github.com/fianchetto/clubtix/internal/service/tickets"
)

type Services struct {
	Discounts *discounts.Service
	Booking   *booking.Service
	Query     *query.Service
	Admin     *admin.Service
	Messaging *messaging.Service
	Mailer    *mailer.Service
	Tickets   *tickets.Service
}

type Config struct {
	Discounts discounts.Config
	Booking   booking.Config
	Query     query.Config
	Mailer    mailer.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redisx.EventsPubSub,
	limiter *redis.SlidingWindowLimiter,
	sender email.Sender,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Discounts: discounts.New(store, cache, logger, cfg.Discounts),
		Booking:   booking.New(store, cache, pubsub, limiter, logger, cfg.Booking),
		Query:     query.New(store, cache, cfg.Query),
		Admin:     admin.New(store, cache, pubsub),
		Messaging: messaging.New(store),
		Mailer:    mailer.New(store.Outbox(), sender, logger, cfg.Mailer),
		Tickets:   tickets.New(store),
	}
}
