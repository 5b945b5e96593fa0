// Package storage 上传文件（玩法指南、海报）的对象存储
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wfunc/serious-game/internal/config"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// Category 上传文件类别
type Category string

const (
	CategoryGuide  Category = "guide"
	CategoryPoster Category = "poster"
)

// allowedExtensions 各类别允许的扩展名
var allowedExtensions = map[Category][]string{
	CategoryGuide:  {"pdf"},
	CategoryPoster: {"jpg", "jpeg", "png"},
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// FileStore 文件存储接口
type FileStore interface {
	Store(ctx context.Context, data io.Reader, suggestedName string, category Category) (string, error)
	Open(ctx context.Context, ref string) (*blob.Reader, error)
	Delete(ctx context.Context, ref string) error
}

// BlobStore 基于 gocloud blob 的文件存储
type BlobStore struct {
	bucket *blob.Bucket
	dirs   map[Category]string
	log    *zap.Logger
}

// Open 按配置打开存储桶
// file:// 相对路径会转换为绝对路径并自动创建目录
func Open(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (*BlobStore, error) {
	bucket, err := openBucket(ctx, cfg.URL)
	if err != nil {
		return nil, apperrors.Storage(err, "打开存储桶失败: "+cfg.URL)
	}
	return NewBlobStore(bucket, cfg, log), nil
}

func openBucket(ctx context.Context, rawURL string) (*blob.Bucket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "file" {
		return blob.OpenBucket(ctx, rawURL)
	}

	dir := u.Host + u.Path
	if !filepath.IsAbs(dir) {
		if dir, err = filepath.Abs(dir); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return fileblob.OpenBucket(dir, nil)
}

// NewBlobStore 使用已打开的存储桶
func NewBlobStore(bucket *blob.Bucket, cfg *config.StorageConfig, log *zap.Logger) *BlobStore {
	guideDir, posterDir := "guides", "images"
	if cfg != nil {
		if cfg.GuideDir != "" {
			guideDir = cfg.GuideDir
		}
		if cfg.PosterDir != "" {
			posterDir = cfg.PosterDir
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BlobStore{
		bucket: bucket,
		dirs: map[Category]string{
			CategoryGuide:  sanitizeKey(guideDir),
			CategoryPoster: sanitizeKey(posterDir),
		},
		log: log,
	}
}

// Store 写入文件，返回存储引用 <目录>/<uuid>_<文件名>
func (s *BlobStore) Store(ctx context.Context, data io.Reader, suggestedName string, category Category) (string, error) {
	dir, ok := s.dirs[category]
	if !ok {
		return "", apperrors.Validation("未知文件类别: %s", category)
	}

	name := sanitizeName(suggestedName)
	key := path.Join(dir, uuid.New().String()+"_"+name)

	// 取消上下文以放弃未完成的写入
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType: contentTypes[extension(name)],
	})
	if err != nil {
		return "", apperrors.Storage(err, "创建写入器失败")
	}
	if _, err := io.Copy(w, data); err != nil {
		cancel()
		w.Close()
		return "", apperrors.Wrap(err, apperrors.ErrFileWrite, "写入文件失败")
	}
	if err := w.Close(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileWrite, "写入文件失败")
	}

	s.log.Info("文件已保存",
		zap.String("key", key),
		zap.String("category", string(category)),
	)
	return key, nil
}

// Open 打开已保存的文件
func (s *BlobStore) Open(ctx context.Context, ref string) (*blob.Reader, error) {
	key := sanitizeKey(ref)
	if key == "" {
		return nil, apperrors.NotFound("文件引用为空")
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.NotFound("文件不存在: %s", key)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileRead, "读取文件失败")
	}
	return r, nil
}

// Delete 删除文件，不存在时视为成功
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	key := sanitizeKey(ref)
	if key == "" {
		return nil
	}
	if err := s.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return apperrors.Storage(err, "删除文件失败")
	}
	return nil
}

// Exists 文件是否存在
func (s *BlobStore) Exists(ctx context.Context, ref string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, sanitizeKey(ref))
	if err != nil {
		return false, apperrors.Storage(err)
	}
	return ok, nil
}

// Close 关闭存储桶
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

// CheckExtension 检查文件扩展名是否在类别的允许列表中
func CheckExtension(category Category, filename string) error {
	allowed, ok := allowedExtensions[category]
	if !ok {
		return apperrors.Validation("未知文件类别: %s", category)
	}
	ext := extension(filename)
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return apperrors.Validation("%s 文件类型不允许: %q，仅支持 %s",
		category, filename, strings.Join(allowed, ", "))
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// sanitizeKey 防止路径穿越
func sanitizeKey(key string) string {
	key = filepath.ToSlash(key)
	key = strings.TrimLeft(key, "/")
	parts := strings.Split(key, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

// sanitizeName 只保留文件名本身，去掉目录与控制字符
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
