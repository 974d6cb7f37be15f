package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ecoloop-backend/internal/storage"
)

func newLocalStore(t *testing.T) *storage.LocalDocumentStore {
	t.Helper()
	store, err := storage.NewLocalDocumentStore("http://localhost:8080", t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return store
}

func TestLocalDocumentStore_SaveAndRead(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	key := "applicant-7-deadbeef.pdf"

	exists, _, err := store.FileExists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	err = store.SaveFile(key, strings.NewReader("certificate contents"))
	assert.NoError(t, err)

	exists, size, err := store.FileExists(ctx, key)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(len("certificate contents")), size)

	rc, err := store.ReadFile(key)
	assert.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "certificate contents", string(data))
}

func TestLocalDocumentStore_Delete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	key := "applicant-7-cafebabe.pdf"

	assert.NoError(t, store.SaveFile(key, strings.NewReader("x")))
	assert.NoError(t, store.DeleteFile(ctx, key))

	exists, _, err := store.FileExists(ctx, key)
	assert.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing file is not an error.
	assert.NoError(t, store.DeleteFile(ctx, key))
}

func TestLocalDocumentStore_URLs(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	uploadURL, err := store.GenerateUploadURL(ctx, "applicant-7-key.pdf", "application/pdf", 15*time.Minute)
	assert.NoError(t, err)
	assert.Contains(t, uploadURL, "http://localhost:8080/api/v1/upload/")
	assert.Contains(t, uploadURL, "?key=applicant-7-key.pdf")

	downloadURL, err := store.GenerateDownloadURL(ctx, "applicant-7-key.pdf", 15*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/files/applicant-7-key.pdf", downloadURL)
}

func TestLocalDocumentStore_HostileKeysAreFlattened(t *testing.T) {
	store := newLocalStore(t)
	key := "../../etc/passwd"

	assert.NoError(t, store.SaveFile(key, strings.NewReader("nope")))

	rc, err := store.ReadFile(key)
	assert.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "nope", string(data))
}

func TestNewDocumentKey(t *testing.T) {
	key := storage.NewDocumentKey(7, "Business Registration.pdf")
	assert.True(t, strings.HasPrefix(key, "applicant-7-"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	other := storage.NewDocumentKey(7, "Business Registration.pdf")
	assert.NotEqual(t, key, other)
}
