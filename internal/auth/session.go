// Пакет auth — вход администратора по общему паролю и сессионный cookie.
// Сессия — HS256 JWT в HttpOnly cookie; серверного хранилища сессий нет,
// cookie сам является полномочием до истечения срока.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Имя cookie сессии администратора.
const SessionCookieName = "admin_session"

// sessionAudience — audience сессионных токенов.
const sessionAudience = "admin-session"

// sessionSubject — субъект токена: пользователь один, без ролей.
const sessionSubject = "admin"

// Ошибки аутентификации.
var (
	// ErrPasswordNotConfigured — пароль администратора не задан в окружении.
	ErrPasswordNotConfigured = errors.New("пароль администратора не настроен")
	// ErrInvalidPassword — неверный пароль.
	ErrInvalidPassword = errors.New("неверный пароль")
	// ErrNoSession — cookie сессии отсутствует.
	ErrNoSession = errors.New("сессия отсутствует")
	// ErrInvalidSession — токен сессии недействителен или просрочен.
	ErrInvalidSession = errors.New("недействительная сессия")
)

// SessionManager выпускает и проверяет сессии администратора.
type SessionManager struct {
	password string
	secret   []byte
	ttl      time.Duration
	// secure — Secure-флаг cookie (production)
	secure bool
	now    func() time.Time
}

// NewSessionManager создаёт менеджер сессий.
// password — пароль администратора (пустой — вход невозможен),
// secret — ключ подписи токенов, ttl — срок жизни сессии.
func NewSessionManager(password, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		password: password,
		secret:   []byte(secret),
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
	}
}

// Login сверяет пароль за постоянное время и выпускает токен сессии.
func (sm *SessionManager) Login(password string) (string, error) {
	if sm.password == "" {
		return "", ErrPasswordNotConfigured
	}

	// Сравниваем хеши, чтобы время не зависело от длины пароля
	want := sha256.Sum256([]byte(sm.password))
	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return "", ErrInvalidPassword
	}

	return sm.Issue()
}

// Issue выпускает токен сессии на ttl.
func (sm *SessionManager) Issue() (string, error) {
	now := sm.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionSubject,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена сессии: %w", err)
	}
	return token, nil
}

// Validate проверяет подпись, audience и срок действия токена.
func (sm *SessionManager) Validate(token string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return sm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithSubject(sessionSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sm.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return nil
}

// Authenticate проверяет сессию из cookie запроса.
func (sm *SessionManager) Authenticate(r *http.Request) error {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ErrNoSession
	}
	return sm.Validate(cookie.Value)
}

// SetSessionCookie устанавливает cookie сессии в ответ.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.ttl / time.Second),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie удаляет cookie сессии (logout).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
