package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemSource/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = NewClientFrom(db, nil, logging.NewNopLogger())
	s.cache = NewRedisCache(s.client, logging.NewNopLogger(), WithPrefix("test:"), WithJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type testRecord struct {
	Name   string   `json:"name"`
	Emails []string `json:"emails"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testRecord{Name: "Acme", Emails: []string{"a@acme.com"}}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	var dest testRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_NullMarker() {
	s.mock.ExpectGet("test:key1").SetVal(nullMarker)

	var dest testRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.Equal(s.T(), ErrCachedNull, err)
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:key1").SetErr(fmt.Errorf("connection reset"))

	var dest testRecord
	err := s.cache.Get(context.Background(), "key1", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_Success() {
	val := testRecord{Name: "Acme"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectSet("test:key1", raw, time.Minute).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "key1", val, time.Minute))
}

func (s *CacheTestSuite) TestDelete_Success() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	assert.NoError(s.T(), s.cache.Delete(context.Background(), "k1", "k2"))
}

func (s *CacheTestSuite) TestExists_True() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	val := testRecord{Name: "Acme"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:key1").SetVal(string(raw))

	called := false
	var dest testRecord
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.NoError(s.T(), err)
	assert.False(s.T(), called)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_NullMarkerSkipsLoader() {
	s.mock.ExpectGet("test:key1").SetVal(nullMarker)

	called := false
	var dest testRecord
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.Equal(s.T(), ErrCachedNull, err)
	assert.False(s.T(), called)
}

func (s *CacheTestSuite) TestGetOrSet_MissStoresNull() {
	s.mock.ExpectGet("test:key1").RedisNil()
	s.mock.ExpectSet("test:key1", nullMarker, time.Minute).SetVal("OK")

	var dest testRecord
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCachedNull))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func newMiniredisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(&Config{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, logging.NewNopLogger(), WithPrefix("cs:")), mr
}

func TestGetOrSet_LoadsOnceAndExpires(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	var loads atomic.Int32
	loader := func(ctx context.Context) (interface{}, error) {
		loads.Add(1)
		return &testRecord{Name: "Acme"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest testRecord
			assert.NoError(t, cache.GetOrSet(ctx, "evidence:1", &dest, time.Hour, loader))
			assert.Equal(t, "Acme", dest.Name)
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, loads.Load(), int32(1))
	assert.True(t, mr.Exists("cs:evidence:1"))

	before := loads.Load()
	var dest testRecord
	require.NoError(t, cache.GetOrSet(ctx, "evidence:1", &dest, time.Hour, loader))
	assert.Equal(t, before, loads.Load())

	mr.FastForward(2 * time.Hour)
	require.NoError(t, cache.GetOrSet(ctx, "evidence:1", &dest, time.Hour, loader))
	assert.Equal(t, before+1, loads.Load())
}

func TestGetOrSet_LoaderErrorNotCached(t *testing.T) {
	cache, mr := newMiniredisCache(t)

	boom := pkgerrors.New(pkgerrors.ErrCodeFetchFailed, "timeout")
	var dest testRecord
	err := cache.GetOrSet(context.Background(), "k", &dest, time.Hour, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.Equal(t, boom, err)
	assert.False(t, mr.Exists("cs:k"))
}

func TestDeleteByPrefix(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "evidence:67-64-1:a", testRecord{Name: "a"}, time.Hour))
	require.NoError(t, cache.Set(ctx, "evidence:67-64-1:b", testRecord{Name: "b"}, time.Hour))
	require.NoError(t, cache.Set(ctx, "evidence:64-17-5:c", testRecord{Name: "c"}, time.Hour))

	n, err := cache.DeleteByPrefix(ctx, "evidence:67-64-1:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.True(t, mr.Exists("cs:evidence:64-17-5:c"))
	assert.NoError(t, cache.Ping(ctx))
}

//Personal.AI order the ending
