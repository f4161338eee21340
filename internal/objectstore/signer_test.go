package objectstore

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

// tokenFromLink извлекает ключ и токен из подписанной ссылки.
func tokenFromLink(t *testing.T, link string) (key, token string) {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("некорректная ссылка %q: %v", link, err)
	}
	key, err = url.PathUnescape(strings.TrimPrefix(u.EscapedPath(), ResumePathPrefix))
	if err != nil {
		t.Fatalf("некорректный путь %q: %v", u.Path, err)
	}
	return key, u.Query().Get("token")
}

func TestLinkSigner_SignVerify(t *testing.T) {
	s := NewLinkSigner(testSecret, "https://www.example.com/")

	link, err := s.Sign("1700000000000-abc.pdf", 365*24*time.Hour)
	if err != nil {
		t.Fatalf("Sign() ошибка: %v", err)
	}
	if !strings.HasPrefix(link, "https://www.example.com/api/resumes/1700000000000-abc.pdf?token=") {
		t.Errorf("ссылка = %q, ожидается путь /api/resumes/{key}", link)
	}

	key, token := tokenFromLink(t, link)
	if key != "1700000000000-abc.pdf" {
		t.Errorf("key = %q", key)
	}
	if err := s.Verify(key, token); err != nil {
		t.Errorf("Verify() ошибка: %v", err)
	}
}

func TestLinkSigner_Rejects(t *testing.T) {
	s := NewLinkSigner(testSecret, "https://www.example.com")
	link, err := s.Sign("a.pdf", time.Hour)
	if err != nil {
		t.Fatalf("Sign() ошибка: %v", err)
	}
	_, token := tokenFromLink(t, link)

	// Другой объект
	if err := s.Verify("b.pdf", token); !errors.Is(err, ErrInvalidLinkToken) {
		t.Errorf("Verify(другой ключ) = %v, ожидается ErrInvalidLinkToken", err)
	}

	// Другой секрет
	other := NewLinkSigner("another-secret-0123456789abcdef0123", "https://www.example.com")
	if err := other.Verify("a.pdf", token); !errors.Is(err, ErrInvalidLinkToken) {
		t.Errorf("Verify(другой секрет) = %v, ожидается ErrInvalidLinkToken", err)
	}

	// Просроченный токен
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := s.Verify("a.pdf", token); !errors.Is(err, ErrInvalidLinkToken) {
		t.Errorf("Verify(просрочен) = %v, ожидается ErrInvalidLinkToken", err)
	}

	if err := s.Verify("a.pdf", "garbage"); !errors.Is(err, ErrInvalidLinkToken) {
		t.Errorf("Verify(garbage) = %v, ожидается ErrInvalidLinkToken", err)
	}
}

func TestLinkSigner_EmptyInputs(t *testing.T) {
	if _, err := NewLinkSigner(testSecret, "https://x").Sign("", time.Hour); err == nil {
		t.Error("Sign(\"\") не вернул ошибку")
	}
	if _, err := NewLinkSigner("", "https://x").Sign("a.pdf", time.Hour); err == nil {
		t.Error("Sign() с пустым секретом не вернул ошибку")
	}
}
