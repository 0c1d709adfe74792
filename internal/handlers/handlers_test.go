package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
	"github.com/yukikurage/renovation-tracker-api/internal/models"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
	"github.com/yukikurage/renovation-tracker-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type handlerTestEnv struct {
	db              *gorm.DB
	store           *storage.LocalStore
	tokens          *auth.TokenManager
	propertyService *services.PropertyService
	projectService  *services.ProjectService
	documentService *services.DocumentService
	authHandler     *AuthHandler
	propertyHandler *PropertyHandler
	projectHandler  *ProjectHandler
	documentHandler *DocumentHandler
	summaryHandler  *SummaryHandler
	blobHandler     *BlobHandler
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "http://api.test", "link-secret")
	require.NoError(t, err)

	resolver := repository.NewOwnershipResolver(db)
	userRepo := repository.NewUserRepository(db)
	tokens := auth.NewTokenManager("handler-secret", time.Hour)

	documentService := services.NewDocumentService(repository.NewDocumentRepository(db), resolver, store, nil, services.DocumentServiceConfig{})
	propertyService := services.NewPropertyService(repository.NewPropertyRepository(db), resolver, documentService)
	projectService := services.NewProjectService(repository.NewProjectRepository(db), resolver, documentService)
	authService := services.NewAuthService(userRepo, tokens, nil, bcrypt.MinCost)

	return handlerTestEnv{
		db:              db,
		store:           store,
		tokens:          tokens,
		propertyService: propertyService,
		projectService:  projectService,
		documentService: documentService,
		authHandler:     NewAuthHandler(authService, services.NewAccountService(userRepo, documentService)),
		propertyHandler: NewPropertyHandler(propertyService),
		projectHandler:  NewProjectHandler(projectService),
		documentHandler: NewDocumentHandler(documentService),
		summaryHandler:  NewSummaryHandler(services.NewSummaryService(userRepo)),
		blobHandler:     NewBlobHandler(store, store),
	}
}

func testContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyPrincipal, auth.Principal{UserID: userID, TokenID: "test-jti", ExpiresAt: time.Now().Add(time.Hour)})
	}

	return c, w
}

func withID(c *gin.Context, id uint64) *gin.Context {
	c.Params = gin.Params{{Key: "id", Value: formatID(id)}}
	return c
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func (e handlerTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hashed"}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e handlerTestEnv) createProject(t *testing.T, userID uint64) (*models.Property, *models.Project) {
	t.Helper()
	property, err := e.propertyService.Create(context.Background(), userID, services.CreatePropertyInput{Name: "Lakeview"})
	require.NoError(t, err)
	project, err := e.projectService.Create(context.Background(), userID, services.CreateProjectInput{PropertyID: property.ID, Name: "Roof"})
	require.NoError(t, err)
	return property, project
}

// multipartBody builds an upload form. An empty projectID leaves the field out.
func multipartBody(t *testing.T, projectID, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if projectID != "" {
		require.NoError(t, writer.WriteField("project_id", projectID))
	}
	if content != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func uploadContext(t *testing.T, userID uint64, projectID, fileName, contentType string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body, formType := multipartBody(t, projectID, fileName, contentType, content)
	c, w := testContext("POST", "/api/documents", nil, userID)
	c.Request = httptest.NewRequest("POST", "/api/documents", body)
	c.Request.Header.Set("Content-Type", formType)
	return c, w
}

func formatID(id uint64) string {
	return fmt.Sprint(id)
}
