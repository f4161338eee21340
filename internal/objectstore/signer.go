package objectstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки проверки подписанных ссылок.
var (
	// ErrInvalidLinkToken — подпись неверна, токен просрочен или выдан на другой объект.
	ErrInvalidLinkToken = errors.New("недействительная ссылка на резюме")
)

// resumeLinkAudience — audience токенов ссылок на резюме.
// Отличает их от сессионных токенов, подписанных тем же секретом.
const resumeLinkAudience = "resume-link"

// ResumePathPrefix — путь эндпоинта выдачи резюме по подписанной ссылке.
const ResumePathPrefix = "/api/resumes/"

// LinkSigner выпускает и проверяет подписанные ссылки на объекты bucket.
// Ссылка — GET {baseURL}/api/resumes/{key}?token=<HS256 JWT>, где sub — ключ объекта.
type LinkSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewLinkSigner создаёт подписывающий объект. baseURL — внешний адрес сайта.
func NewLinkSigner(secret, baseURL string) *LinkSigner {
	return &LinkSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Sign выпускает ссылку на объект key со сроком действия ttl.
func (s *LinkSigner) Sign(key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("пустой ключ объекта")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("секрет подписи не задан")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{resumeLinkAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи ссылки: %w", err)
	}

	return s.baseURL + ResumePathPrefix + url.PathEscape(key) + "?token=" + url.QueryEscape(token), nil
}

// Verify проверяет токен ссылки на объект key.
func (s *LinkSigner) Verify(key, token string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resumeLinkAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLinkToken, err)
	}
	if claims.Subject != key {
		return fmt.Errorf("%w: токен выдан на другой объект", ErrInvalidLinkToken)
	}
	return nil
}
