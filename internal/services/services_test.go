package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
	"github.com/yukikurage/renovation-tracker-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// fakeBlobStore records every call made against it.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	calls     []string
	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("put:" + key)
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "mem://" + key, nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get:" + key)
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[key]; !ok {
		return storage.ErrBlobNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("presign:" + key)
	return "https://blobs.example/" + key + "?ttl=" + ttl.String(), nil
}

func (f *fakeBlobStore) KeyFromLocation(location string) (string, error) {
	if !strings.HasPrefix(location, "mem://") {
		return "", storage.ErrInvalidLocation
	}
	return strings.TrimPrefix(location, "mem://"), nil
}

func (f *fakeBlobStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, "put:") {
			n++
		}
	}
	return n
}

type orphanCounter struct {
	count int
}

func (o *orphanCounter) OrphanBlob() { o.count++ }

type failingDocumentRepo struct {
	repository.DocumentRepository
}

func (failingDocumentRepo) Create(context.Context, *models.Document) error {
	return errors.New("insert failed")
}

type serviceEnv struct {
	db        *gorm.DB
	store     *fakeBlobStore
	orphans   *orphanCounter
	resolver  repository.OwnershipResolver
	users     repository.UserRepository
	documents *DocumentService
	props     *PropertyService
	projects  *ProjectService
}

func setupServiceEnv(t *testing.T) serviceEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	store := newFakeBlobStore()
	orphans := &orphanCounter{}
	resolver := repository.NewOwnershipResolver(db)
	documents := NewDocumentService(repository.NewDocumentRepository(db), resolver, store, orphans, DocumentServiceConfig{})

	return serviceEnv{
		db:        db,
		store:     store,
		orphans:   orphans,
		resolver:  resolver,
		users:     repository.NewUserRepository(db),
		documents: documents,
		props:     NewPropertyService(repository.NewPropertyRepository(db), resolver, documents),
		projects:  NewProjectService(repository.NewProjectRepository(db), resolver, documents),
	}
}

func (e serviceEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e serviceEnv) createProject(t *testing.T, userID uint64) (*models.Property, *models.Project) {
	t.Helper()
	property, err := e.props.Create(context.Background(), userID, CreatePropertyInput{Name: "Lakeview"})
	require.NoError(t, err)
	project, err := e.projects.Create(context.Background(), userID, CreateProjectInput{PropertyID: property.ID, Name: "Roof"})
	require.NoError(t, err)
	return property, project
}

func (e serviceEnv) upload(t *testing.T, userID, projectID uint64) *models.Document {
	t.Helper()
	document, err := e.documents.Upload(context.Background(), userID, UploadInput{
		ProjectID:   projectID,
		FileName:    "quote.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(samplePDF)),
		Body:        bytes.NewReader(samplePDF),
	})
	require.NoError(t, err)
	return document
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
