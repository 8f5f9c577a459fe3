// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RabbitMQURL             string `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries      int    `yaml:"rabbitmq_max_retries" env-default:"10"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Entitlement             `yaml:"entitlement"`
	Scheduler               `yaml:"scheduler"`
	PaymentProvider         `yaml:"payment_provider"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Entitlement хранит пороги политики доступа к урокам.
// Все значения конфигурируемы, в коде порогов-литералов нет.
type Entitlement struct {
	FreeLessonLimit int `yaml:"free_lesson_limit" env-default:"30"` // Последний бесплатный урок
	TotalLessons    int `yaml:"total_lessons" env-default:"120"`    // Всего уроков в каталоге
	TrialDays       int `yaml:"trial_days" env-default:"30"`        // Длина пробного периода
	NearExpiryDays  int `yaml:"near_expiry_days" env-default:"10"`  // Порог предупреждения
	NudgeDays       int `yaml:"nudge_days" env-default:"3"`         // Порог показа апгрейд-модалки
}

// Scheduler настройки фонового обхода истекающих пробных периодов
type Scheduler struct {
	Interval     time.Duration `yaml:"interval" env-default:"12h"`    // Период обхода
	ReminderDays int           `yaml:"reminder_days" env-default:"1"` // Горизонт напоминания
}

// PaymentProvider структура для настройки платёжного провайдера
type PaymentProvider struct {
	CheckoutURL        string `yaml:"checkout_url"`
	APIURL             string `yaml:"api_url"`
	APIToken           string `yaml:"api_token" env:"PAYMENT_API_TOKEN"`
	WebhookSecret      string `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
	PremiumPriceCents  int    `yaml:"premium_price_cents" env-default:"1900"`
	LifetimePriceCents int    `yaml:"lifetime_price_cents" env-default:"9900"`
	Currency           string `yaml:"currency" env-default:"USD"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// MustLoad загружает конфиг из файла, указанного в CONFIG_PATH.
// Завершает процесс, если файл отсутствует или не парсится.
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
