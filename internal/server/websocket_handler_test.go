package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lumo/internal/domain/token"
	"lumo/internal/repository/mocks"
	"lumo/internal/services"
	"lumo/internal/tokencodec"
	lumo_errors "lumo/pkg/errors"
)

func newGalleryRouter(t *testing.T, tokens *mocks.MockTokenRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := services.NewTokenService(tokens, []byte("test-secret"))
	handler := NewWebSocketHandler(NewHub(nil), service, nil)

	r := gin.New()
	r.GET("/v1/gallery/ws", handler.Handle)
	return r
}

func galleryToken(t *testing.T) string {
	t.Helper()
	value, err := tokencodec.Mint([]byte("test-secret"), tokencodec.Payload{
		UserID:   uuid.New(),
		Name:     "wedding",
		IssuedAt: time.Now(),
	})
	require.NoError(t, err)
	return value
}

func TestGalleryWS_MissingToken(t *testing.T) {
	r := newGalleryRouter(t, new(mocks.MockTokenRepository))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/gallery/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGalleryWS_MalformedToken(t *testing.T) {
	r := newGalleryRouter(t, new(mocks.MockTokenRepository))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/gallery/ws?token=not-a-token", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGalleryWS_UnknownToken(t *testing.T) {
	tokens := new(mocks.MockTokenRepository)
	value := galleryToken(t)
	tokens.On("GetByValue", mock.Anything, value).
		Return(token.UploadToken{}, lumo_errors.ErrNotFound)

	r := newGalleryRouter(t, tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/gallery/ws?token="+value, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
