package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/marketplace-backend/internal/address"
	"github.com/wichananm65/marketplace-backend/internal/cart"
	"github.com/wichananm65/marketplace-backend/internal/category"
	"github.com/wichananm65/marketplace-backend/internal/config"
	"github.com/wichananm65/marketplace-backend/internal/database"
	"github.com/wichananm65/marketplace-backend/internal/favorite"
	"github.com/wichananm65/marketplace-backend/internal/media"
	"github.com/wichananm65/marketplace-backend/internal/order"
	"github.com/wichananm65/marketplace-backend/internal/product"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

// repositories groups one implementation of every store the app uses.
type repositories struct {
	users      user.Repository
	categories category.Repository
	products   product.Repository
	favorites  favorite.Repository
	addresses  address.Repository
	carts      cart.Repository
	orders     order.Repository
	blobs      media.Store

	closers []func() error
}

func (r *repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

func openRepositories(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*repositories, error) {
	repos := &repositories{}

	var db *sql.DB
	switch cfg.Storage {
	case "postgres":
		var err error
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repos.closers = append(repos.closers, db.Close)
		if err := database.Migrate(ctx, db); err != nil {
			repos.Close()
			return nil, err
		}
		repos.users = user.NewPostgresRepository(db)
		repos.categories = category.NewPostgresRepository(db)
		repos.products = product.NewPostgresRepository(db)
		repos.favorites = favorite.NewPostgresRepository(db)
		repos.addresses = address.NewPostgresRepository(db)
		repos.orders = order.NewPostgresRepository(db)
		repos.blobs = media.NewPostgresStore(db)
		log.Info("using postgres storage")
	default:
		repos.users = user.NewInMemoryRepository(nil)
		repos.categories = category.NewInMemoryRepository(nil)
		repos.products = product.NewInMemoryRepository(nil)
		repos.favorites = favorite.NewInMemoryRepository()
		repos.addresses = address.NewInMemoryRepository()
		repos.orders = order.NewInMemoryRepository()
		repos.blobs = media.NewInMemoryStore()
		log.Warn("using in-memory storage, data is lost on restart")
	}

	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			repos.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		repos.closers = append(repos.closers, client.Close)
		repos.carts = cart.NewRedisRepository(client, cfg.CartTTL)
		log.WithField("addr", cfg.RedisAddr).Info("carts stored in redis")
	case db != nil:
		repos.carts = cart.NewPostgresRepository(db)
	default:
		repos.carts = cart.NewInMemoryRepository()
	}
	return repos, nil
}
