package testimonialsubmit_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/opensoxlabs/opensox-api/internal/http/handlers/testimonial/testimonialsubmit"
	"github.com/opensoxlabs/opensox-api/internal/http/middlewarectx"
	"github.com/opensoxlabs/opensox-api/internal/models"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Submit(ctx context.Context, userUID string, req models.DummyTestimonial) (*models.Testimonial, error) {
	args := m.Called(ctx, userUID, req)
	if tst, ok := args.Get(0).(*models.Testimonial); ok {
		return tst, args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doRequest(h http.Handler, userUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/testimonials", strings.NewReader(body))
	if userUID != "" {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, userUID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSubmit_Success(t *testing.T) {
	service := new(ServiceMock)
	h := testimonialsubmit.New(newNoopLogger(), service)

	service.On("Submit", mock.Anything, "uid-1",
		models.DummyTestimonial{Name: "Alice", Content: "Great weekly sessions!"}).
		Return(&models.Testimonial{ID: "t-1", Name: "Alice", Content: "Great weekly sessions!"}, nil)

	rec := doRequest(h, "uid-1", `{"name":"Alice","content":"Great weekly sessions!"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"t-1"`)
	service.AssertExpectations(t)
}

func TestSubmit_NotProMapsToForbidden(t *testing.T) {
	service := new(ServiceMock)
	h := testimonialsubmit.New(newNoopLogger(), service)

	service.On("Submit", mock.Anything, "uid-1", mock.Anything).
		Return(nil, sessionservice.ErrSubscriptionRequired)

	rec := doRequest(h, "uid-1", `{"name":"Alice","content":"Great weekly sessions!"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmit_ValidationFailed(t *testing.T) {
	service := new(ServiceMock)
	h := testimonialsubmit.New(newNoopLogger(), service)

	// Слишком короткий текст отзыва.
	rec := doRequest(h, "uid-1", `{"name":"Alice","content":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	service.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_BadJSON(t *testing.T) {
	service := new(ServiceMock)
	h := testimonialsubmit.New(newNoopLogger(), service)

	rec := doRequest(h, "uid-1", `{not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_MissingUser(t *testing.T) {
	service := new(ServiceMock)
	h := testimonialsubmit.New(newNoopLogger(), service)

	rec := doRequest(h, "", `{"name":"Alice","content":"Great weekly sessions!"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
