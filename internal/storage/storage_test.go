package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	objects  map[string][]byte
	uploaded map[string]string
}

func (m *memStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memStorage) DownloadObject(_ context.Context, key, dest string) error {
	return os.WriteFile(dest, m.objects[key], 0o644)
}

func (m *memStorage) UploadObject(_ context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func (m *memStorage) UploadFile(_ context.Context, key, src string) error {
	if m.uploaded == nil {
		m.uploaded = map[string]string{}
	}
	m.uploaded[key] = src
	return nil
}

func TestDownloadPrefixKeepsRelativePaths(t *testing.T) {
	s := &memStorage{objects: map[string][]byte{
		"exports/c/insaldo_c.csv": []byte("a"),
		"exports/insaldo.csv":     []byte("b"),
		"exports/readme.txt":      []byte("c"),
		"other/insaldo.csv":       []byte("d"),
	}}
	dir := t.TempDir()

	got, err := DownloadPrefix(context.Background(), s, "exports/", dir, ".CSV")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "c", "insaldo_c.csv"),
		filepath.Join(dir, "insaldo.csv"),
	}, got)

	b, err := os.ReadFile(got[1])
	require.NoError(t, err)
	assert.Equal(t, "b", string(b))

	_, err = DownloadPrefix(context.Background(), s, "missing/", dir, ".csv")
	assert.Error(t, err)
}

func TestResolveObjectKey(t *testing.T) {
	assert.Equal(t, "recon/kpi.csv", ResolveObjectKey("recon/", "kpi.csv"))
	assert.Equal(t, "recon/kpi.csv", ResolveObjectKey("recon", "/recon/kpi.csv"))
	assert.Equal(t, "kpi.csv", ResolveObjectKey("", "/kpi.csv"))
	assert.Equal(t, "recon", ResolveObjectKey(" recon ", ""))
}

func TestUploaderUsesBaseName(t *testing.T) {
	s := &memStorage{objects: map[string][]byte{}}
	up := Uploader(s, "runs/2024")
	require.NoError(t, up(context.Background(), "/tmp/out/kpi.csv"))
	assert.Equal(t, "/tmp/out/kpi.csv", s.uploaded["runs/2024/kpi.csv"])
}

func TestNewMinioClientValidates(t *testing.T) {
	_, err := NewMinioClient(MinioConfig{})
	assert.Error(t, err)
	_, err = NewMinioClient(MinioConfig{Endpoint: "s3.local"})
	assert.Error(t, err)

	c, err := NewMinioClient(MinioConfig{Endpoint: "https://s3.local/", AccessKey: "a", SecretKey: "b", Bucket: "recon"})
	require.NoError(t, err)
	assert.Equal(t, "recon", c.bucket)
}

func TestNormalizeEndpoint(t *testing.T) {
	host, secure := normalizeEndpoint("http://minio:9000/", true)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, secure)

	host, secure = normalizeEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}
