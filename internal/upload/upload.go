package upload

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/gomarket/internal/apperr"
)

// 商品图片落在 <dir>/products 下，对外经 /uploads 静态路由访问
const productSubdir = "products"

var allowedExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Store 本地图片存储
type Store struct {
	dir string
}

// NewStore 创建图片存储，dir 为上传根目录
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) filename(ext string) (string, string) {
	name := fmt.Sprintf("product-%s.%s", uuid.NewString(), ext)
	return filepath.Join(s.dir, productSubdir, name), "/uploads/" + productSubdir + "/" + name
}

// SaveMultipart 保存表单上传的图片，返回对外 URL
func (s *Store) SaveMultipart(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !allowedExts[ext] {
		return "", apperr.BadRequest("不支持的图片格式，请上传 jpg/png/gif/webp。")
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path, url := s.filename(ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return url, nil
}

// SaveBase64 保存 data:image/<ext>;base64,... 形式的图片，返回对外 URL
func (s *Store) SaveBase64(data string) (string, error) {
	if !strings.HasPrefix(data, "data:image/") {
		return "", apperr.BadRequest("不是图片数据，仅支持 data:image 开头的 base64。")
	}
	semi := strings.Index(data, ";base64,")
	if semi < 0 {
		return "", apperr.BadRequest("图片数据格式有误，请检查 base64 编码。")
	}
	ext := strings.ToLower(data[len("data:image/"):semi])
	if ext == "jpeg" {
		ext = "jpg"
	}
	if !allowedExts[ext] {
		return "", apperr.BadRequest("不支持的图片格式，请上传 jpg/png/gif/webp。")
	}

	raw, err := base64.StdEncoding.DecodeString(data[semi+len(";base64,"):])
	if err != nil {
		return "", apperr.BadRequest("图片数据解码失败，请检查 base64 编码。")
	}

	path, url := s.filename(ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return url, nil
}

// Remove 删除一张已上传的图片；URL 不在本存储内时忽略
func (s *Store) Remove(publicURL string) {
	if !strings.HasPrefix(publicURL, "/uploads/") {
		return
	}
	rel := filepath.Clean(strings.TrimPrefix(publicURL, "/uploads/"))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	_ = os.Remove(filepath.Join(s.dir, rel))
}
