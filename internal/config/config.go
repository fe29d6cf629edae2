// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env-default:"development"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	PaymentProvider         `yaml:"payment_provider"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает, что кеширование отключено — сервис работает
// напрямую с хранилищем.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"3s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"2s"`
	SessionsTTL  time.Duration `yaml:"sessions_ttl" env-default:"10m"`
	CatalogTTL   time.Duration `yaml:"catalog_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQConnection string        `yaml:"rabbitmq_connection" env:"RABBITMQ_URL"`
	ConnectRetries     int           `yaml:"connect_retries" env-default:"5"`
	ConnectDelay       time.Duration `yaml:"connect_delay" env-default:"2s"`
}

// SMTP структура для отправки писем через внешний SMTP сервер.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"smtp_from"`
}

// PaymentProvider структура с реквизитами платёжного провайдера.
type PaymentProvider struct {
	ProviderKeyID     string `yaml:"provider_key_id" env:"PAYMENT_KEY_ID"`
	ProviderKeySecret string `yaml:"provider_key_secret" env:"PAYMENT_KEY_SECRET"`
	WebhookSecret     string `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
}

// MustLoad загружает конфиг по пути из переменной окружения CONFIG_PATH.
// При любой ошибке завершает процесс — сервис без конфига не имеет смысла.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// CacheEnabled сообщает, настроено ли подключение к redis.
func (r RedisConnection) CacheEnabled() bool {
	return r.AddressRedis != ""
}
