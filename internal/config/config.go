// Пакет config — загрузка и валидация конфигурации Site API
// из переменных окружения (с предварительной подгрузкой .env).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Окружения запуска.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config содержит все параметры конфигурации Site API.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Окружение (development, production) — влияет на Secure-флаг cookie
	Env string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Внешний базовый URL сайта (для подписанных ссылок на резюме)
	PublicBaseURL string

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Объектное хранилище (S3-совместимое) ---

	// Endpoint хранилища без схемы (например, storage.example.com:9000)
	StorageEndpoint string
	// Ключ доступа
	StorageAccessKey string
	// Секретный ключ
	StorageSecretKey string
	// Регион (опционально)
	StorageRegion string
	// Использовать HTTPS
	StorageUseSSL bool
	// Имя bucket для резюме
	StorageBucket string
	// Публичный префикс URL объектов bucket (без завершающего /)
	StoragePublicURL string
	// Path для проверки доступности хранилища (topologymetrics)
	StorageHealthPath string

	// --- Резюме ---

	// Максимальный размер файла резюме в байтах
	ResumeMaxBytes int64
	// Срок действия подписанной ссылки на резюме
	ResumeSignedURLTTL time.Duration
	// Таймаут одной HEAD-проверки при сверке URL резюме
	ProbeTimeout time.Duration

	// --- Валидация ---

	// Отрезать ведущий код страны "91" у 12-значного номера телефона
	PhoneStripCountryCode bool

	// --- Администрирование ---

	// Пароль администратора (пустой — вход запрещён)
	AdminPassword string
	// Секрет подписи сессионного токена и ссылок на резюме
	SessionSecret string
	// Время жизни сессии администратора
	SessionTTL time.Duration

	// --- Redis (rate limit, опционально) ---

	// Адрес Redis; пустой — rate limit отключён
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Лимит запросов на публичные формы за окно
	RateLimit int
	// Окно rate limit
	RateLimitWindow time.Duration
	// Доверенные прокси (ingress), от которых принимается X-Forwarded-For
	TrustedProxies []netip.Prefix

	// --- Кэш вакансий ---

	// Максимальное количество записей в кэше
	JobsCacheSize int
	// TTL записей кэша
	JobsCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Группа topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Если в рабочем каталоге есть .env — переменные из него подгружаются
// без перезаписи уже заданных.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// SITE_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("SITE_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("SITE_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SITE_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// SITE_ENV — окружение (по умолчанию development)
	cfg.Env = getEnvDefault("SITE_ENV", EnvDevelopment)
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("SITE_ENV: недопустимое значение %q, допустимые: development, production", cfg.Env)
	}

	// SITE_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SITE_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SITE_LOG_LEVEL: %w", err)
	}

	// SITE_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SITE_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SITE_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// SITE_PUBLIC_BASE_URL — внешний адрес сайта
	cfg.PublicBaseURL = strings.TrimRight(
		getEnvDefault("SITE_PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	if err := validateAbsoluteURL(cfg.PublicBaseURL); err != nil {
		return nil, fmt.Errorf("SITE_PUBLIC_BASE_URL: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("SITE_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("SITE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("SITE_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("SITE_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("SITE_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("SITE_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("SITE_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("SITE_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Объектное хранилище ---

	cfg.StorageEndpoint, err = getEnvRequired("SITE_STORAGE_ENDPOINT")
	if err != nil {
		return nil, err
	}
	if strings.Contains(cfg.StorageEndpoint, "://") {
		return nil, fmt.Errorf("SITE_STORAGE_ENDPOINT: укажите host[:port] без схемы, получено %q", cfg.StorageEndpoint)
	}

	cfg.StorageAccessKey, err = getEnvRequired("SITE_STORAGE_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	cfg.StorageSecretKey, err = getEnvRequired("SITE_STORAGE_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	cfg.StorageRegion = getEnvDefault("SITE_STORAGE_REGION", "")

	cfg.StorageUseSSL, err = getEnvBool("SITE_STORAGE_USE_SSL", true)
	if err != nil {
		return nil, fmt.Errorf("SITE_STORAGE_USE_SSL: %w", err)
	}

	// SITE_STORAGE_BUCKET — bucket резюме (по умолчанию resumes)
	cfg.StorageBucket = getEnvDefault("SITE_STORAGE_BUCKET", "resumes")

	// SITE_STORAGE_PUBLIC_URL — авто-вычисляется (path-style), если не задан
	scheme := "http"
	if cfg.StorageUseSSL {
		scheme = "https"
	}
	cfg.StoragePublicURL = strings.TrimRight(getEnvDefault("SITE_STORAGE_PUBLIC_URL",
		fmt.Sprintf("%s://%s/%s", scheme, cfg.StorageEndpoint, cfg.StorageBucket)), "/")
	if err := validateAbsoluteURL(cfg.StoragePublicURL); err != nil {
		return nil, fmt.Errorf("SITE_STORAGE_PUBLIC_URL: %w", err)
	}

	cfg.StorageHealthPath = getEnvDefault("SITE_STORAGE_HEALTH_PATH", "/minio/health/live")

	// --- Резюме ---

	maxBytes, err := getEnvInt("SITE_RESUME_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("SITE_RESUME_MAX_BYTES: %w", err)
	}
	if maxBytes < 1 {
		return nil, fmt.Errorf("SITE_RESUME_MAX_BYTES: значение %d должно быть положительным", maxBytes)
	}
	cfg.ResumeMaxBytes = int64(maxBytes)

	// SITE_RESUME_SIGNED_URL_TTL — срок подписанной ссылки (по умолчанию 1 год)
	cfg.ResumeSignedURLTTL, err = getEnvDuration("SITE_RESUME_SIGNED_URL_TTL", 365*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SITE_RESUME_SIGNED_URL_TTL: %w", err)
	}

	cfg.ProbeTimeout, err = getEnvDuration("SITE_PROBE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SITE_PROBE_TIMEOUT: %w", err)
	}

	// --- Валидация ---

	cfg.PhoneStripCountryCode, err = getEnvBool("SITE_PHONE_STRIP_COUNTRY_CODE", false)
	if err != nil {
		return nil, fmt.Errorf("SITE_PHONE_STRIP_COUNTRY_CODE: %w", err)
	}

	// --- Администрирование ---

	// Пустой пароль допустим: login отвечает 500 «не настроен»
	cfg.AdminPassword = os.Getenv("SITE_ADMIN_PASSWORD")

	cfg.SessionSecret, err = getEnvRequired("SITE_SESSION_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SITE_SESSION_SECRET: длина секрета %d, требуется не менее 32 символов", len(cfg.SessionSecret))
	}

	cfg.SessionTTL, err = getEnvDuration("SITE_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("SITE_SESSION_TTL: %w", err)
	}

	// --- Redis ---

	cfg.RedisAddr = getEnvDefault("SITE_REDIS_ADDR", "")
	cfg.RedisPassword = getEnvDefault("SITE_REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvInt("SITE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("SITE_REDIS_DB: %w", err)
	}

	cfg.RateLimit, err = getEnvInt("SITE_RATE_LIMIT", 20)
	if err != nil {
		return nil, fmt.Errorf("SITE_RATE_LIMIT: %w", err)
	}
	if cfg.RateLimit < 1 {
		return nil, fmt.Errorf("SITE_RATE_LIMIT: значение %d должно быть положительным", cfg.RateLimit)
	}

	cfg.RateLimitWindow, err = getEnvDuration("SITE_RATE_LIMIT_WINDOW", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SITE_RATE_LIMIT_WINDOW: %w", err)
	}

	// SITE_TRUSTED_PROXIES — IP или CIDR через запятую; пусто — X-Forwarded-For не учитывается
	cfg.TrustedProxies, err = parseTrustedProxies(getEnvDefault("SITE_TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("SITE_TRUSTED_PROXIES: %w", err)
	}

	// --- Кэш вакансий ---

	cfg.JobsCacheSize, err = getEnvInt("SITE_JOBS_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("SITE_JOBS_CACHE_SIZE: %w", err)
	}
	if cfg.JobsCacheSize < 1 || cfg.JobsCacheSize > 100000 {
		return nil, fmt.Errorf("SITE_JOBS_CACHE_SIZE: значение %d вне допустимого диапазона 1-100000", cfg.JobsCacheSize)
	}

	cfg.JobsCacheTTL, err = getEnvDuration("SITE_JOBS_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SITE_JOBS_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthGroup = getEnvDefault("SITE_DEPHEALTH_GROUP", "corpsite")

	cfg.DephealthCheckInterval, err = getEnvDuration("SITE_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SITE_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("SITE_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SITE_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// IsProduction сообщает, запущен ли сервис в production-окружении.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов метрик).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// StorageURL возвращает базовый URL объектного хранилища.
func (c *Config) StorageURL() string {
	scheme := "http"
	if c.StorageUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.StorageEndpoint
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает логическое значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("длительность должна быть положительной: %q", val)
	}
	return d, nil
}

// parseTrustedProxies разбирает список IP-адресов и CIDR через запятую.
// Одиночный адрес превращается в префикс из одного адреса.
func parseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var result []netip.Prefix
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("некорректный CIDR %q: %w", item, err)
			}
			result = append(result, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("некорректный IP-адрес %q: %w", item, err)
		}
		addr = addr.Unmap()
		result = append(result, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return result, nil
}

// validateAbsoluteURL проверяет, что строка — абсолютный http(s) URL.
func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ожидается абсолютный http(s) URL, получено %q", raw)
	}
	return nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
