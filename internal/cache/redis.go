// Package cache реализует шлюз к redis с деградацией при отказе.
//
// Кеш никогда не является причиной падения запроса: при отсутствующем
// конфиге, недоступном сервере или повреждённых данных операции чтения
// возвращают промах, операции записи — false. Все ошибки пишутся в лог
// и проглатываются. Вызывающий код не может отличить "кеш отключён"
// от "кеш недоступен" — и не должен.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/opensoxlabs/opensox-api/internal/config"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opensox_cache_hits_total",
		Help: "Number of cache reads served from redis.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opensox_cache_misses_total",
		Help: "Number of cache reads that fell through to the primary store.",
	})
	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opensox_cache_errors_total",
		Help: "Number of swallowed cache backend failures by operation.",
	}, []string{"op"})
)

// Cache шлюз к redis. Соединение создаётся лениво при первом обращении
// и переиспользуется всем процессом; клиент go-redis безопасен для
// конкурентного использования.
type Cache struct {
	cfg config.RedisConnection
	log *slog.Logger

	once sync.Once
	db   *redis.Client
}

// New создаёт шлюз. Никогда не возвращает ошибку: пустой адрес redis
// означает, что кеширование отключено и все операции деградируют.
func New(cfg config.RedisConnection, log *slog.Logger) *Cache {
	c := &Cache{cfg: cfg, log: log}
	if !cfg.CacheEnabled() {
		log.Warn("redis address is not configured, caching is disabled")
	}
	return c
}

// client возвращает клиент redis или nil, если кеширование отключено.
// Инициализация защищена sync.Once — при конкурентном первом обращении
// открывается ровно одно соединение.
func (c *Cache) client() *redis.Client {
	if !c.cfg.CacheEnabled() {
		return nil
	}
	c.once.Do(func() {
		c.db = redis.NewClient(&redis.Options{
			Addr:         c.cfg.AddressRedis,
			Password:     c.cfg.Password,
			Username:     c.cfg.User,
			DB:           c.cfg.DB,
			MaxRetries:   c.cfg.MaxRetries,
			DialTimeout:  c.cfg.DialTimeout,
			ReadTimeout:  c.cfg.TimeoutRedis,
			WriteTimeout: c.cfg.TimeoutRedis,
		})
	})
	return c.db
}

// Ping проверяет доступность redis. Используется только в health-проверке,
// отказ кеша не считается отказом сервиса.
func (c *Cache) Ping(ctx context.Context) bool {
	db := c.client()
	if db == nil {
		return false
	}
	return db.Ping(ctx).Err() == nil
}

// Get читает значение по ключу и декодирует его в result.
// Возвращает false при отключённом кеше, недоступном сервере,
// отсутствующем ключе или повреждённом значении.
func (c *Cache) Get(ctx context.Context, key string, result any) bool {
	const op = "cache.Get"
	db := c.client()
	if db == nil {
		cacheMisses.Inc()
		return false
	}

	val, err := db.Get(ctx, key).Result()
	if err == redis.Nil {
		cacheMisses.Inc()
		return false
	}
	if err != nil {
		c.log.Warn("redis get failed", slog.String("op", op), slog.String("key", key), sl.Err(err))
		cacheErrors.WithLabelValues("get").Inc()
		cacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(val), result); err != nil {
		c.log.Warn("failed to decode cached value", slog.String("op", op), slog.String("key", key), sl.Err(err))
		cacheErrors.WithLabelValues("get").Inc()
		cacheMisses.Inc()
		return false
	}
	cacheHits.Inc()
	return true
}

// Set сохраняет значение по ключу. expiration <= 0 означает запись без
// срока жизни. Возвращает false при любой ошибке.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) bool {
	const op = "cache.Set"
	db := c.client()
	if db == nil {
		return false
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("failed to encode value for cache", slog.String("op", op), slog.String("key", key), sl.Err(err))
		cacheErrors.WithLabelValues("set").Inc()
		return false
	}
	if expiration < 0 {
		expiration = 0
	}
	if err := db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		c.log.Warn("redis set failed", slog.String("op", op), slog.String("key", key), sl.Err(err))
		cacheErrors.WithLabelValues("set").Inc()
		return false
	}
	return true
}

// Del удаляет значение по ключу. Удаление отсутствующего ключа — успех.
func (c *Cache) Del(ctx context.Context, key string) bool {
	const op = "cache.Del"
	db := c.client()
	if db == nil {
		return false
	}

	if err := db.Del(ctx, key).Err(); err != nil {
		c.log.Warn("redis del failed", slog.String("op", op), slog.String("key", key), sl.Err(err))
		cacheErrors.WithLabelValues("del").Inc()
		return false
	}
	c.log.Debug("cache invalidated", slog.String("key", key))
	return true
}

// DelPattern удаляет все ключи, подходящие под glob-шаблон, одной пачкой.
// Набор ключей фиксируется на момент сканирования: ключ, записанный между
// SCAN и DEL, переживёт инвалидацию. Гонка принята осознанно — следующий
// писатель инвалидирует и его.
func (c *Cache) DelPattern(ctx context.Context, pattern string) bool {
	const op = "cache.DelPattern"
	db := c.client()
	if db == nil {
		return false
	}

	var keys []string
	iter := db.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("redis scan failed", slog.String("op", op), slog.String("pattern", pattern), sl.Err(err))
		cacheErrors.WithLabelValues("del_pattern").Inc()
		return false
	}
	if len(keys) == 0 {
		return true
	}
	if err := db.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("redis del failed", slog.String("op", op), slog.String("pattern", pattern), sl.Err(err))
		cacheErrors.WithLabelValues("del_pattern").Inc()
		return false
	}
	c.log.Debug("cache invalidated by pattern",
		slog.String("pattern", pattern), slog.Int("keys", len(keys)))
	return true
}

// Close закрывает соединение с redis, если оно было открыто.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
