package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/internal/payment"
	"github.com/Alturino/storefront/internal/repository"
)

type (
	setupFunc    func(context.Context, ...string) (*redis.Client, *pgxpool.Pool, *postgres.PostgresContainer, *testRedis.RedisContainer, *repository.Queries)
	teardownFunc func(*redis.Client, *pgxpool.Pool, *postgres.PostgresContainer, *testRedis.RedisContainer)
)

// fakeCart is an in-memory CartStore so checkout tests control the cart
// contents without the cart service.
type fakeCart struct {
	items   map[uuid.UUID]int32
	cleared bool
}

func (f *fakeCart) Snapshot(c context.Context, userId uuid.UUID) (map[uuid.UUID]int32, error) {
	snapshot := make(map[uuid.UUID]int32, len(f.items))
	for productId, quantity := range f.items {
		snapshot[productId] = quantity
	}
	return snapshot, nil
}

func (f *fakeCart) Clear(c context.Context, userId uuid.UUID) error {
	f.items = map[uuid.UUID]int32{}
	f.cleared = true
	return nil
}

// fakeGateway records the session request and answers lookups with a
// configurable state.
type fakeGateway struct {
	createErr   error
	lookupState string
	lastRequest payment.SessionRequest
}

func (f *fakeGateway) CreateSession(
	c context.Context,
	req payment.SessionRequest,
) (payment.SessionResponse, error) {
	if f.createErr != nil {
		return payment.SessionResponse{}, f.createErr
	}
	f.lastRequest = req
	return payment.SessionResponse{
		SessionID:  "gw_" + req.Reference,
		PaymentURL: "https://gateway.test/pay/" + req.Reference,
	}, nil
}

func (f *fakeGateway) LookupSession(
	c context.Context,
	sessionID string,
) (payment.SessionStatus, error) {
	return payment.SessionStatus{
		SessionID:   sessionID,
		State:       f.lookupState,
		AmountMinor: f.lastRequest.AmountMinor,
	}, nil
}

type fakeMailer struct {
	subjects   []string
	recipients []string
}

func (f *fakeMailer) Send(subject, body, recipient string) error {
	f.subjects = append(f.subjects, subject)
	f.recipients = append(f.recipients, recipient)
	return nil
}

func setup(t *testing.T) setupFunc {
	return func(c context.Context, seedPaths ...string) (*redis.Client, *pgxpool.Pool, *postgres.PostgresContainer, *testRedis.RedisContainer, *repository.Queries) {
		pgContainer, err := postgres.Run(
			c,
			"postgres:16.6-alpine3.21",
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_DB":       "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_PORT":     "5432",
				"POSTGRES_USER":     "postgres",
			}),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.WithDatabase("postgres"),
			postgres.BasicWaitStrategies(),
			postgres.WithInitScripts(
				append(
					[]string{
						filepath.Join("..", "..", "..", "migrations", "20250703091500_create_table_products.up.sql"),
						filepath.Join("..", "..", "..", "migrations", "20250703091630_create_table_orders.up.sql"),
						filepath.Join("..", "..", "..", "migrations", "20250703091745_create_table_checkout_sessions.up.sql"),
					},
					seedPaths...)...,
			),
		)
		if err != nil {
			t.Fatalf("failed running postgres container with error: %s", err)
		}

		pgConnStr, err := pgContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting postgres connection string with error: %s", err)
		}

		pgConfig, err := pgxpool.ParseConfig(pgConnStr)
		if err != nil {
			t.Fatalf("failed parsing pgConfig with error: %s", err)
		}

		pool, err := pgxpool.NewWithConfig(c, pgConfig)
		if err != nil {
			t.Fatalf("failed creating postgres pool with error: %s", err)
		}

		if err = pool.Ping(c); err != nil {
			t.Fatalf("failed ping postgres pool with error: %s", err)
		}

		redisContainer, err := testRedis.Run(
			c,
			"redis:7.4.2-alpine3.21",
			testRedis.WithLogLevel(testRedis.LogLevelVerbose),
		)
		if err != nil {
			t.Fatalf("failed running redis container with error: %s", err)
		}

		redisConnStr, err := redisContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting redis connection string with error: %s", err)
		}

		redisOpt, err := redis.ParseURL(redisConnStr)
		if err != nil {
			t.Fatalf("failed parsing redis connection string with error: %s", err)
		}

		redisClient := redis.NewClient(redisOpt)
		if err = redisClient.Ping(c).Err(); err != nil {
			t.Fatalf("failed ping redis client with error: %s", err)
		}

		queries := repository.New(pool)
		return redisClient, pool, pgContainer, redisContainer, queries
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(redis *redis.Client, pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer, redisContainer *testRedis.RedisContainer) {
		defer func() {
			redis.Close()
			pool.Close()
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Fatalf("failed to terminate container: %s", err)
			}
			if err := testcontainers.TerminateContainer(redisContainer); err != nil {
				t.Fatalf("failed to terminate container: %s", err)
			}
		}()
	}
}
