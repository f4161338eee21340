// ratelimit.go — ограничение частоты публичных отправок форм.
// Фиксированное окно в Redis: INCR ключа клиента, EXPIRE на первом запросе окна.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apierrors "github.com/bigkaa/corpsite/site-api/internal/api/errors"
)

// RateCounter — счётчик запросов в окне.
type RateCounter interface {
	// Hit увеличивает счётчик key и возвращает его значение и остаток окна.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisCounter — RateCounter поверх Redis.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter создаёт счётчик на клиенте Redis.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Hit реализует RateCounter.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка INCR %s: %w", key, err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("ошибка EXPIRE %s: %w", key, err)
		}
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return count, window, nil
	}
	// Ключ без срока жизни (сбой EXPIRE ранее) — восстанавливаем окно
	if ttl < 0 {
		_ = c.client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// RateLimitConfig — параметры ограничителя.
type RateLimitConfig struct {
	Counter RateCounter
	// Limit — максимум запросов клиента в окне
	Limit int
	// Window — длительность окна
	Window time.Duration
	// KeyPrefix — префикс ключей (по умолчанию "site:rl:")
	KeyPrefix string
	// TrustedProxies — адреса ingress/балансировщиков. X-Forwarded-For
	// учитывается только от них; пустой список — заголовок игнорируется.
	TrustedProxies []netip.Prefix
}

// RateLimit возвращает middleware ограничения частоты запросов по IP клиента.
// При недоступности счётчика запрос пропускается.
func RateLimit(cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "site:rl:"
	}
	logger = logger.With(slog.String("component", "rate_limit"))
	limit := strconv.Itoa(cfg.Limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r, cfg.TrustedProxies)
			key := cfg.KeyPrefix + r.URL.Path + ":" + client

			count, ttl, err := cfg.Counter.Hit(r.Context(), key, cfg.Window)
			if err != nil {
				logger.Warn("Счётчик запросов недоступен, лимит не применяется",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			reset := strconv.Itoa(int(ttl.Seconds()))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Reset", reset)

			if count > int64(cfg.Limit) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", reset)
				logger.Info("Превышен лимит запросов",
					slog.String("path", r.URL.Path),
					slog.String("client", client),
				)
				apierrors.RateLimited(w, "Too many requests. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(cfg.Limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP определяет адрес клиента. Если запрос пришёл от доверенного
// прокси, X-Forwarded-For разбирается справа налево до первого адреса,
// не принадлежащего доверенным прокси. Иначе — хост RemoteAddr.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := remoteHost(r.RemoteAddr)
	if !isTrusted(remote, trusted) {
		return remote
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	return remote
}

// remoteHost — хост из RemoteAddr (с портом или без).
func remoteHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	if remoteAddr == "" {
		return "anonymous"
	}
	return remoteAddr
}

// isTrusted сообщает, что адрес входит в один из доверенных диапазонов.
// Нераспознанный адрес недоверенный.
func isTrusted(host string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
