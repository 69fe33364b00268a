package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ContactsGo/internal/domain"
	"github.com/utafrali/ContactsGo/internal/service"
	apperrors "github.com/utafrali/ContactsGo/pkg/errors"
	"github.com/utafrali/ContactsGo/pkg/middleware"
)

func contactTestHandler(repo *mockContactRepo) *ContactHandler {
	svc := service.NewContactService(repo, handlerTestProducer(), handlerTestLogger())
	return NewContactHandler(svc)
}

// setupContactRouter mirrors the production contact routes with a fake token
// validator for auth.
func setupContactRouter(handler *ContactHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(fakeTokenValidator(userID)))

		r.Get("/all", handler.List)
		r.Get("/birthday", handler.UpcomingBirthdays)
		r.Get("/search/{query}", handler.Search)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func authedRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}

func sampleContactFor(userID string) domain.Contact {
	now := time.Now().UTC()
	return domain.Contact{
		ID:        testContactID,
		UserID:    userID,
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "bob@example.com",
		Phone:     "+380501112233",
		Birthday:  time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// List Tests
// ============================================================================

func TestContactListHandler_Success(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("ListByUserID", mock.Anything, testUserID).
		Return([]domain.Contact{sampleContactFor(testUserID)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/all", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	list := resp.Data.([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "bob@example.com", first["email"])
	_, hasOwner := first["user_id"]
	assert.False(t, hasOwner, "owner id must not be serialized")
}

func TestContactListHandler_EmptyList(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("ListByUserID", mock.Anything, testUserID).
		Return([]domain.Contact{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/all", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// Get Tests
// ============================================================================

func TestContactGetHandler_Success(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	contact := sampleContactFor(testUserID)
	repo.On("GetByID", mock.Anything, testUserID, testContactID).Return(&contact, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/"+testContactID, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, testContactID, data["id"])
}

func TestContactGetHandler_NotFound(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("GetByID", mock.Anything, testUserID, "missing").
		Return(nil, apperrors.NotFound("contact", "missing"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/missing", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// ============================================================================
// Search Tests
// ============================================================================

func TestContactSearchHandler_Found(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("SearchByField", mock.Anything, testUserID, "first_name", "bo").
		Return([]domain.Contact{sampleContactFor(testUserID)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/search/bo", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	list := resp.Data.([]any)
	assert.Len(t, list, 1)
}

func TestContactSearchHandler_NoMatches(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	for _, field := range []string{"first_name", "last_name", "email"} {
		repo.On("SearchByField", mock.Anything, testUserID, field, "zzz").
			Return([]domain.Contact{}, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/search/zzz", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// UpcomingBirthdays Tests
// ============================================================================

func TestContactBirthdayHandler_FiltersToWindow(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	today := time.Now().UTC()

	soon := sampleContactFor(testUserID)
	soon.ID = "ct-soon"
	soon.Birthday = time.Date(1990, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 2)

	far := sampleContactFor(testUserID)
	far.ID = "ct-far"
	far.Birthday = time.Date(1990, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 90)

	repo.On("ListByUserID", mock.Anything, testUserID).
		Return([]domain.Contact{soon, far}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/contacts/birthday", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	list := resp.Data.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "ct-soon", list[0].(map[string]any)["id"])
}

// ============================================================================
// Create Tests
// ============================================================================

func TestContactCreateHandler_Success(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("ExistsByEmail", mock.Anything, testUserID, "bob@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Contact")).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/contacts/",
		`{"first_name":"Bob","last_name":"Jones","email":"bob@example.com","phone":"+380501112233","birthday":"1990-06-15"}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Bob", data["first_name"])
	assert.NotEmpty(t, data["id"])

	repo.AssertExpectations(t)
}

func TestContactCreateHandler_DuplicateEmail(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("ExistsByEmail", mock.Anything, testUserID, "bob@example.com").Return(true, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/contacts/",
		`{"first_name":"Bob","last_name":"Jones","email":"bob@example.com","phone":"+380501112233","birthday":"1990-06-15"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestContactCreateHandler_BadBirthdayFormat(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/contacts/",
		`{"first_name":"Bob","last_name":"Jones","email":"bob@example.com","phone":"+380501112233","birthday":"15/06/1990"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "ExistsByEmail")
}

func TestContactCreateHandler_MissingFields(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/contacts/",
		`{"first_name":"Bob"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// ============================================================================
// Update Tests
// ============================================================================

func TestContactUpdateHandler_Success(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	contact := sampleContactFor(testUserID)
	repo.On("GetByID", mock.Anything, testUserID, testContactID).Return(&contact, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Contact")).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPut, "/api/contacts/"+testContactID,
		`{"first_name":"Robert"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Robert", data["first_name"])
	assert.Equal(t, "Jones", data["last_name"], "unset fields stay unchanged")
}

func TestContactUpdateHandler_NotFound(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("GetByID", mock.Anything, testUserID, "missing").
		Return(nil, apperrors.NotFound("contact", "missing"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPut, "/api/contacts/missing",
		`{"first_name":"Robert"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestContactDeleteHandler_Success(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("Delete", mock.Anything, testUserID, testContactID).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/contacts/"+testContactID, ""))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestContactDeleteHandler_NotFound(t *testing.T) {
	repo := new(mockContactRepo)
	handler := contactTestHandler(repo)
	router := setupContactRouter(handler, testUserID)

	repo.On("Delete", mock.Anything, testUserID, "missing").
		Return(apperrors.NotFound("contact", "missing"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/contacts/missing", ""))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
