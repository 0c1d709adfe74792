package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/metrics"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
	"github.com/yukikurage/renovation-tracker-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T, revocations auth.RevocationStore) apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local, err := storage.NewLocalStore(t.TempDir(), "http://api.test", "link-secret")
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	router := Setup(Dependencies{
		DB:          testutil.NewTestDB(t),
		Tokens:      auth.NewTokenManager("routes-secret", time.Hour),
		Revocations: revocations,
		BlobStore:   storage.Instrument(local, m),
		Links:       local,
		Metrics:     m,
		Gatherer:    registry,
		BcryptCost:  bcrypt.MinCost,
	})
	return apiClient{t: t, router: router}
}

func (a apiClient) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a apiClient) json(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a apiClient) upload(token string, projectID uint64, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(a.t, writer.WriteField("project_id", fmt.Sprint(projectID)))
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return a.do(req, token)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (a apiClient) login(username, password string) string {
	w := a.json(http.MethodPost, "/api/auth/register", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	w = a.json(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode(a.t, w)["token"].(string)
}

func idOf(t *testing.T, w *httptest.ResponseRecorder) uint64 {
	t.Helper()
	return uint64(decode(t, w)["id"].(float64))
}

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	api := newAPI(t, nil)

	w := api.json(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "p@ss"})
	require.Equal(t, http.StatusCreated, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	w = api.json(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "p@ss"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_IssuesTokenAcceptedByMe(t *testing.T) {
	api := newAPI(t, nil)
	api.json(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "p@ss"})

	w := api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.json(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "p@ss"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	assert.NotZero(t, body["userId"])
	assert.NotEmpty(t, body["expires_at"])

	w = api.json(http.MethodGet, "/api/auth/me", body["token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode(t, w)["username"])
}

func TestProperties_ForeignPropertyIsNotFound(t *testing.T) {
	api := newAPI(t, nil)
	alice := api.login("alice", "p@ss")
	bob := api.login("bob", "hunter2")

	w := api.json(http.MethodPost, "/api/properties", alice, map[string]string{"name": "Lakeview"})
	require.Equal(t, http.StatusCreated, w.Code)
	property := decode(t, w)
	assert.Equal(t, "Lakeview", property["name"])
	id := uint64(property["id"].(float64))

	w = api.json(http.MethodGet, fmt.Sprintf("/api/properties/%d", id), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.json(http.MethodGet, fmt.Sprintf("/api/properties/%d", id), alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadDocument_EnforcesSizeAndPDFGate(t *testing.T) {
	api := newAPI(t, nil)
	alice := api.login("alice", "p@ss")

	w := api.json(http.MethodPost, "/api/properties", alice, map[string]string{"name": "Lakeview"})
	propertyID := idOf(t, w)
	w = api.json(http.MethodPost, "/api/projects", alice, map[string]interface{}{"property_id": propertyID, "name": "Roof"})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := idOf(t, w)

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("0"), 15<<20)...)
	w = api.upload(alice, projectID, "plans.pdf", "application/pdf", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, w)["code"])

	w = api.upload(alice, projectID, "notes.txt", "text/plain", []byte("just text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", decode(t, w)["code"])

	w = api.upload(alice, projectID, "quote.pdf", "application/pdf", samplePDF)
	require.Equal(t, http.StatusCreated, w.Code)
	documentID := idOf(t, w)

	w = api.json(http.MethodGet, fmt.Sprintf("/api/documents/%d/download", documentID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	link := decode(t, w)["url"].(string)

	req := httptest.NewRequest(http.MethodGet, link[len("http://api.test"):], nil)
	w = api.do(req, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, samplePDF, w.Body.Bytes())
}

func TestDeleteProperty_CascadesToProjectsAndDocuments(t *testing.T) {
	api := newAPI(t, nil)
	alice := api.login("alice", "p@ss")

	w := api.json(http.MethodPost, "/api/properties", alice, map[string]string{"name": "Lakeview"})
	propertyID := idOf(t, w)
	w = api.json(http.MethodPost, "/api/projects", alice, map[string]interface{}{"property_id": propertyID, "name": "Roof"})
	projectID := idOf(t, w)
	w = api.upload(alice, projectID, "quote.pdf", "application/pdf", samplePDF)
	require.Equal(t, http.StatusCreated, w.Code)
	documentID := idOf(t, w)

	w = api.json(http.MethodDelete, fmt.Sprintf("/api/properties/%d", propertyID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.json(http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.json(http.MethodGet, fmt.Sprintf("/api/documents/%d", documentID), alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.json(http.MethodGet, "/api/summary", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["properties"])
}

func TestAuthenticationFailures(t *testing.T) {
	api := newAPI(t, nil)

	w := api.json(http.MethodGet, "/api/properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.json(http.MethodGet, "/api/properties", "not.a.token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// logout is not routed without a revocation store
	w = api.json(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newAPI(t, &memoryRevocations{revoked: map[string]bool{}})
	alice := api.login("alice", "p@ss")

	w := api.json(http.MethodGet, "/api/auth/me", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.json(http.MethodPost, "/api/auth/logout", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.json(http.MethodGet, "/api/auth/me", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newAPI(t, nil)

	w := api.json(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.json(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renovation_http_requests_total")
}
