package upload

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 1x1 PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestSaveBase64(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	url, err := s.SaveBase64(data)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/product-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	assert.NoError(t, err)
	assert.Equal(t, tinyPNG, saved)
}

func TestSaveBase64Rejections(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.SaveBase64("hello world")
	assert.Error(t, err)

	_, err = s.SaveBase64("data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=")
	assert.Error(t, err)

	_, err = s.SaveBase64("data:image/png;base64,@@@not-base64@@@")
	assert.Error(t, err)
}

func TestRemoveStaysInsideStore(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	outside := filepath.Join(dir, "..", "victim.txt")
	assert.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	// 越界路径被忽略
	s.Remove("/uploads/../victim.txt")
	_, err := os.Stat(outside)
	assert.NoError(t, err)

	// 非本存储的 URL 同样忽略
	s.Remove("https://cdn.example.com/x.png")
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	data := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
	url, err := s.SaveBase64(data)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	path := filepath.Join(dir, strings.TrimPrefix(url, "/uploads/"))
	s.Remove(url)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
