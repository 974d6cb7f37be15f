package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalDocumentStore keeps application documents on the local filesystem and
// hands out URLs that point back at this server's upload/download handlers.
type LocalDocumentStore struct {
	baseURL      string // Server URL (e.g., "http://localhost:8080")
	documentsDir string
}

func NewLocalDocumentStore(baseURL, uploadsDir string) (*LocalDocumentStore, error) {
	documentsDir := filepath.Join(uploadsDir, "documents")
	if err := os.MkdirAll(documentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	return &LocalDocumentStore{
		baseURL:      baseURL,
		documentsDir: documentsDir,
	}, nil
}

// GenerateUploadURL returns a URL pointing at this server's PUT handler. The
// key travels in the query so the handler knows where to save the payload.
func (s *LocalDocumentStore) GenerateUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	uploadToken := uuid.New().String()
	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s", s.baseURL, uploadToken, encodeKey(key)), nil
}

func (s *LocalDocumentStore) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return fmt.Sprintf("%s/api/v1/files/%s", s.baseURL, encodeKey(key)), nil
}

func (s *LocalDocumentStore) FileExists(ctx context.Context, key string) (bool, int64, error) {
	info, err := os.Stat(s.pathFor(key))
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalDocumentStore) DeleteFile(ctx context.Context, key string) error {
	err := os.Remove(s.pathFor(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalDocumentStore) SaveFile(key string, reader io.Reader) error {
	path := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalDocumentStore) ReadFile(key string) (io.ReadCloser, error) {
	return os.Open(s.pathFor(key))
}

// pathFor flattens the key into a single safe filename so a crafted key can
// never escape the documents directory.
func (s *LocalDocumentStore) pathFor(key string) string {
	return filepath.Join(s.documentsDir, encodeKey(key))
}

func encodeKey(key string) string {
	if !strings.ContainsAny(key, "/\\?#%") {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + filepath.Ext(key)
}

// NewDocumentKey builds a storage key for a fresh upload.
func NewDocumentKey(applicantID int32, filename string) string {
	return fmt.Sprintf("applicant-%d-%s%s", applicantID, uuid.New().String(), filepath.Ext(filename))
}
