//go:build integration

package store

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"givechain/pkg/platform/sentinel"
	"givechain/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
	cache *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisCacheSuite) TestTotalRoundTrip() {
	huge, ok := new(big.Int).SetString("1000000000000000000000000000000", 10)
	s.Require().True(ok)

	s.Require().NoError(s.cache.SetTotal(s.ctx, "alice", huge))

	total, err := s.cache.GetTotal(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(huge.String(), total.String())
}

func (s *RedisCacheSuite) TestTotalMiss() {
	_, err := s.cache.GetTotal(s.ctx, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestInvalidateTotal() {
	s.Require().NoError(s.cache.SetTotal(s.ctx, "alice", big.NewInt(5)))
	s.Require().NoError(s.cache.InvalidateTotal(s.ctx, "alice"))

	_, err := s.cache.GetTotal(s.ctx, "alice")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestInvoiceTokenRoundTrip() {
	s.Require().NoError(s.cache.SetInvoiceToken(s.ctx, "alice", 7))

	id, err := s.cache.GetInvoiceToken(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(uint64(7), id)

	s.Require().NoError(s.cache.InvalidateInvoiceToken(s.ctx, "alice"))
	_, err = s.cache.GetInvoiceToken(s.ctx, "alice")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
