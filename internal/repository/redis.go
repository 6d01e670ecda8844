package repository

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/darkodi/shortstore/internal/config"
	apperr "github.com/darkodi/shortstore/internal/errors"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/model"
)

// RedisBackend stores the whole CSV document under one key, so a single
// SET replaces the table atomically.
type RedisBackend struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	log     *logger.Logger
}

// NewRedisBackend connects and pings the server before returning.
func NewRedisBackend(cfg config.RedisConfig, key string, log *logger.Logger) (*RedisBackend, error) {
	if log == nil {
		log = logger.Discard()
	}
	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperr.StorageFailure("connect redis "+cfg.Address, err)
	}

	return &RedisBackend{client: client, key: key, timeout: timeout, log: log}, nil
}

func (b *RedisBackend) Name() string { return "redis:" + b.key }

func (b *RedisBackend) Load() ([]model.URL, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	doc, err := b.client.Get(ctx, b.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.StorageFailure("get "+b.key, err)
	}

	urls, err := DecodeCSV(strings.NewReader(doc), warnSkipped(b.log, b.Name()))
	if err != nil {
		return nil, apperr.StorageFailure("decode "+b.key, err)
	}
	return urls, nil
}

func (b *RedisBackend) Save(urls []model.URL) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, urls); err != nil {
		return apperr.StorageFailure("encode "+b.key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.client.Set(ctx, b.key, buf.String(), 0).Err(); err != nil {
		return apperr.StorageFailure("set "+b.key, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
