package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-manager/internal/domain"
)

type redisLoanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLoanCache(client *redis.Client, ttl time.Duration) LoanCache {
	return &redisLoanCache{client: client, ttl: ttl}
}

func loanCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("loan:%s", id)
}

func (c *redisLoanCache) Get(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	raw, err := c.client.Get(ctx, loanCacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loan domain.Loan
	if err := json.Unmarshal(raw, &loan); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (c *redisLoanCache) Set(ctx context.Context, loan *domain.Loan) error {
	raw, err := json.Marshal(loan)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, loanCacheKey(loan.ID), raw, c.ttl).Err()
}

func (c *redisLoanCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, loanCacheKey(id)).Err()
}
