// Пакет objectstore — S3-совместимое хранилище резюме (minio-go)
// и подписанные ссылки на объекты приватного bucket.
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bigkaa/corpsite/site-api/internal/config"
)

// ErrObjectNotFound — объект отсутствует в bucket.
var ErrObjectNotFound = errors.New("объект не найден")

// Object — открытый на чтение объект bucket.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Client — bucket резюме в S3-совместимом хранилище.
type Client struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// New создаёт клиент хранилища. Сетевых запросов не выполняет.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента хранилища: %w", err)
	}

	return &Client{
		client:    mc,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimRight(cfg.StoragePublicURL, "/"),
		logger:    logger.With(slog.String("component", "objectstore")),
	}, nil
}

// Bucket возвращает имя bucket резюме.
func (c *Client) Bucket() string {
	return c.bucket
}

// BucketExists ищет bucket резюме в списке bucket хранилища.
func (c *Client) BucketExists(ctx context.Context) (bool, error) {
	buckets, err := c.client.ListBuckets(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка получения списка bucket: %w", err)
	}
	for _, b := range buckets {
		if b.Name == c.bucket {
			return true, nil
		}
	}
	return false, nil
}

// IsPublic сообщает, разрешает ли политика bucket анонимное чтение объектов.
// Bucket без политики считается приватным.
func (c *Client) IsPublic(ctx context.Context) (bool, error) {
	policy, err := c.client.GetBucketPolicy(ctx, c.bucket)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения политики bucket: %w", err)
	}
	return policyAllowsAnonymousRead(policy, c.bucket), nil
}

// Exists проверяет наличие объекта через StatObject.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, fmt.Errorf("ошибка проверки объекта %s: %w", key, err)
}

// Put загружает объект с указанным content type.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	info, err := c.client.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки объекта %s: %w", key, err)
	}

	c.logger.Debug("Объект загружен",
		slog.String("key", key),
		slog.Int64("size", info.Size),
		slog.String("etag", info.ETag),
	)
	return nil
}

// Get открывает объект на чтение. Вызывающий закрывает Body.
func (c *Client) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", key, err)
	}

	// GetObject ленивый: ошибка отсутствия приходит только из Stat
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", key, err)
	}

	return &Object{
		Body:        obj,
		Size:        st.Size,
		ContentType: st.ContentType,
		ModTime:     st.LastModified,
	}, nil
}

// PublicURL возвращает публичный URL объекта.
func (c *Client) PublicURL(key string) string {
	return c.publicURL + "/" + (&url.URL{Path: key}).EscapedPath()
}

// PublicPrefix возвращает публичный префикс объектов bucket (без завершающего /).
func (c *Client) PublicPrefix() string {
	return c.publicURL
}

// Name — имя зависимости в ответе readiness.
func (c *Client) Name() string {
	return "object_storage"
}

// CheckReady проверяет, что хранилище доступно и bucket резюме существует.
func (c *Client) CheckReady(ctx context.Context) (status string, message string) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ok, err := c.BucketExists(ctx)
	if err != nil {
		return "fail", fmt.Sprintf("хранилище недоступно: %v", err)
	}
	if !ok {
		return "fail", fmt.Sprintf("bucket %q не найден", c.bucket)
	}
	return "ok", "bucket доступен"
}

// isNoSuchKey распознаёт ответ S3 об отсутствии объекта.
func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}

// --- Разбор политики bucket ---

// bucketPolicy — подмножество IAM-политики S3, нужное для проверки анонимного чтения.
type bucketPolicy struct {
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string          `json:"Effect"`
	Principal json.RawMessage `json:"Principal"`
	Action    stringOrSlice   `json:"Action"`
	Resource  stringOrSlice   `json:"Resource"`
}

// stringOrSlice принимает в JSON как строку, так и массив строк.
type stringOrSlice []string

func (s *stringOrSlice) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// policyAllowsAnonymousRead ищет оператор Allow для Principal "*"
// с действием s3:GetObject на объекты bucket.
func policyAllowsAnonymousRead(policy, bucket string) bool {
	if strings.TrimSpace(policy) == "" {
		return false
	}

	var p bucketPolicy
	if err := json.Unmarshal([]byte(policy), &p); err != nil {
		return false
	}

	objectARN := "arn:aws:s3:::" + bucket + "/"
	for _, st := range p.Statement {
		if !strings.EqualFold(st.Effect, "Allow") || !isAnonymousPrincipal(st.Principal) {
			continue
		}
		if !containsAny(st.Action, "s3:GetObject", "s3:*", "*") {
			continue
		}
		for _, res := range st.Resource {
			if res == "*" || strings.HasPrefix(res, objectARN) {
				return true
			}
		}
	}
	return false
}

// isAnonymousPrincipal: "*", {"AWS": "*"} или {"AWS": ["*"]}.
func isAnonymousPrincipal(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "*"
	}
	var m map[string]stringOrSlice
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return containsAny(m["AWS"], "*")
}

func containsAny(values []string, targets ...string) bool {
	for _, v := range values {
		for _, t := range targets {
			if strings.EqualFold(v, t) {
				return true
			}
		}
	}
	return false
}
