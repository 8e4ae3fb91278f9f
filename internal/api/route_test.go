package api

import (
	"Airena/internal/api/dto"
	"Airena/internal/api/handler"
	"Airena/internal/model"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/security"
	"Airena/internal/service"
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubVerifier map[string]*security.Principal

func (v stubVerifier) Verify(_ context.Context, token string) (*security.Principal, error) {
	p, ok := v[token]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return p, nil
}

type stubPostService struct {
	service.PostService
}

func (stubPostService) CreatePost(_ context.Context, p *security.Principal, _ *dto.PostFormDTO, _ *dto.UploadFile) (*dto.PostCreatedDTO, error) {
	if !p.Has(model.RoleAdmin) {
		return nil, service.ErrForbidden
	}
	return &dto.PostCreatedDTO{ID: "p1", Slug: "hello"}, nil
}

func (stubPostService) GetFeaturedPost(context.Context) (*dto.PostDTO, error) {
	return nil, service.ErrNoFeaturedPost
}

type stubVideoRepo struct {
	mongo.VideoRepo
	byAuthor map[string][]*mongo.VideoModel
}

func (r *stubVideoRepo) ListByAuthor(_ context.Context, authorID string) ([]*mongo.VideoModel, error) {
	return r.byAuthor[authorID], nil
}

type stubAppService struct {
	service.ApplicationService
}

func (stubAppService) ListApplications(context.Context, *security.Principal, string) ([]*dto.ApplicationDTO, error) {
	return []*dto.ApplicationDTO{}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := stubVerifier{
		"admin":   security.NewPrincipal("admin-1", model.RoleAdmin),
		"creator": security.NewPrincipal("creator-1", model.RoleCreator),
		"plain":   security.NewPrincipal("user-1"),
		"super":   security.NewPrincipal("boss", model.RoleSuperAdmin),
	}
	videos := &stubVideoRepo{byAuthor: map[string][]*mongo.VideoModel{
		"creator-1": {{ID: primitive.NewObjectID(), Title: "clip", AuthorID: "creator-1", CreatedAt: time.Now()}},
	}}
	videoSvc := service.NewVideoService(videos, nil, nil, nil,
		service.VideoURLPolicy{UsePublicLink: true}, 0, time.Second)

	return SetupRouter(&HandlersGroup{
		Verifier:           verifier,
		UserHandler:        handler.NewUserHandler(nil),
		PostHandler:        handler.NewPostHandler(stubPostService{}),
		VideoHandler:       handler.NewVideoHandler(videoSvc),
		ApplicationHandler: handler.NewApplicationHandler(stubAppService{}),
		ChannelHandler:     handler.NewChannelHandler(nil),
	})
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	assert.Equal(t, w.Code, body.Code, "envelope code must match HTTP status")
	return w.Code, body
}

func postForm(t *testing.T) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Hello"))
	require.NoError(t, mw.WriteField("content", "<p>hi</p>"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreatePostGate(t *testing.T) {
	r := newTestRouter()

	code, _ := do(t, r, postForm(t), "")
	assert.Equal(t, http.StatusUnauthorized, code)

	req := postForm(t)
	req.Header.Set("Authorization", "Basic abc")
	code, _ = do(t, r, req, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, r, postForm(t), "expired")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, r, postForm(t), "creator")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, r, postForm(t), "plain")
	assert.Equal(t, http.StatusForbidden, code)

	code, body := do(t, r, postForm(t), "admin")
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"id":"p1","slug":"hello"}`, string(body.Data))
}

func TestUserVideosIdentityMatch(t *testing.T) {
	r := newTestRouter()

	code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/videos/user/creator-1", nil), "creator")
	assert.Equal(t, http.StatusOK, code)
	var videos []*dto.VideoDTO
	require.NoError(t, json.Unmarshal(body.Data, &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, "clip", videos[0].Title)

	code, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/api/videos/user/creator-1", nil), "admin")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/api/videos/user/creator-1", nil), "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestApplicationListingRequiresSuperAdmin(t *testing.T) {
	r := newTestRouter()

	code, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/api/creator-applications", nil), "admin")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/api/creator-applications", nil), "super")
	assert.Equal(t, http.StatusOK, code)
}

func TestNotFoundMapping(t *testing.T) {
	r := newTestRouter()
	code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/posts/featured", nil), "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, service.ErrNoFeaturedPost.Error(), body.Message)
}
