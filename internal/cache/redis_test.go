package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensoxlabs/opensox-api/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		DialTimeout:  time.Second,
		TimeoutRedis: time.Second,
	}

	return New(cfg, testLogger()), mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	require.True(t, cache.Set(ctx, "user:1", expected, time.Minute))

	var actual testStruct
	found := cache.Get(ctx, "user:1", &actual)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestSetWithoutExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "forever", "value", 0))

	// Запись без срока жизни не исчезает со временем
	mr.FastForward(24 * time.Hour)
	var out string
	assert.True(t, cache.Get(ctx, "forever", &out))
	assert.Equal(t, "value", out)
}

func TestGetExpired(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "short", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	assert.False(t, cache.Get(ctx, "short", &out))
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out testStruct
	found := cache.Get(context.Background(), "no_such_key", &out)
	assert.False(t, found)
}

func TestGetDisabled(t *testing.T) {
	// Пустой адрес: кеширование отключено, операции деградируют молча
	cache := New(config.RedisConnection{}, testLogger())
	ctx := context.Background()

	var out testStruct
	assert.False(t, cache.Get(ctx, "key", &out))
	assert.False(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.False(t, cache.Del(ctx, "key"))
	assert.False(t, cache.DelPattern(ctx, "key:*"))
	assert.False(t, cache.Ping(ctx))
}

func TestGetBackendDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.Close()

	// После остановки сервера чтение возвращает промах, а не ошибку
	var out string
	assert.False(t, cache.Get(ctx, "key", &out))
	assert.False(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.False(t, cache.Del(ctx, "key"))
}

func TestDelAbsentKey(t *testing.T) {
	cache, _ := setupTestCache(t)

	// Удаление отсутствующего ключа — успех, операция идемпотентна
	assert.True(t, cache.Del(context.Background(), "never_existed"))
}

func TestDel(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "key", "value", time.Minute))
	require.True(t, cache.Del(ctx, "key"))

	var out string
	assert.False(t, cache.Get(ctx, "key", &out))
}

func TestDelPattern(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "sessions:all", "a", 0))
	require.True(t, cache.Set(ctx, "sessions:latest", "b", 0))
	require.True(t, cache.Set(ctx, "testimonials:all", "c", 0))

	require.True(t, cache.DelPattern(ctx, "sessions:*"))

	var out string
	assert.False(t, cache.Get(ctx, "sessions:all", &out))
	assert.False(t, cache.Get(ctx, "sessions:latest", &out))
	// Ключи вне шаблона не затронуты
	assert.True(t, cache.Get(ctx, "testimonials:all", &out))
}

func TestDelPatternEmptyMatch(t *testing.T) {
	cache, _ := setupTestCache(t)

	assert.True(t, cache.DelPattern(context.Background(), "nothing:*"))
}

func TestGetInvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)

	// Повреждённое значение в кеше равнозначно промаху
	require.NoError(t, mr.Set("bad", "not-json"))

	var out testStruct
	found := cache.Get(context.Background(), "bad", &out)
	assert.False(t, found)
}

func TestSetUnserializableValue(t *testing.T) {
	cache, _ := setupTestCache(t)

	assert.False(t, cache.Set(context.Background(), "bad", make(chan int), time.Minute))
}

func TestLazyInitSingleClient(t *testing.T) {
	cache, _ := setupTestCache(t)

	done := make(chan struct{})
	for range 8 {
		go func() {
			var out string
			cache.Get(context.Background(), "key", &out)
			done <- struct{}{}
		}()
	}
	for range 8 {
		<-done
	}

	first := cache.client()
	assert.Same(t, first, cache.client())
}
