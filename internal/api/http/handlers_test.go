package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/link-shortener/internal/database"
	"github.com/vadimbarashkov/link-shortener/internal/models"
	"github.com/vadimbarashkov/link-shortener/internal/service"
	"github.com/vadimbarashkov/link-shortener/pkg/response"
)

type MockURLService struct {
	mock.Mock
}

func (s *MockURLService) ShortenURL(ctx context.Context, originalURL, customAlias string, expiresAt *time.Time) (*models.URL, error) {
	args := s.Called(ctx, originalURL, customAlias, expiresAt)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLService) Resolve(ctx context.Context, shortCode string) (string, error) {
	args := s.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

func (s *MockURLService) RecordClick(ctx context.Context, shortCode string) {
	s.Called(ctx, shortCode)
}

func (s *MockURLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	args := s.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLService) DeactivateURL(ctx context.Context, shortCode string) error {
	args := s.Called(ctx, shortCode)
	return args.Error(0)
}

var errUnknown = errors.New("unknown error")

type HandlersTestSuite struct {
	suite.Suite
	logger     *httplog.Logger
	urlSvcMock *MockURLService
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("link-shortener-test", httplog.Options{
		Writer: io.Discard,
	})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlSvcMock = new(MockURLService)
	suite.server = httptest.NewServer(NewRouter(suite.logger, suite.urlSvcMock))
	suite.e = httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  suite.server.URL,
		Reporter: httpexpect.NewAssertReporter(suite.T()),
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.server.Close()
	suite.urlSvcMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestHandlePing() {
	suite.Run("success", func() {
		suite.e.GET("/api/v1/ping").
			Expect().
			Status(http.StatusOK).
			Body().Contains("pong")
	})
}

func (suite *HandlersTestSuite) TestHandleShortenURL() {
	suite.Run("empty request body", func() {
		suite.e.POST("/api/v1/shorten").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.EmptyRequestBodyResponse.Message)
	})

	suite.Run("validation error", func() {
		suite.e.POST("/api/v1/shorten").
			WithJSON(map[string]any{"url": "not url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("status", response.StatusError).
			ContainsKey("details")
	})

	suite.Run("alias conflict", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com", "myalias", (*time.Time)(nil)).
			Once().
			Return(nil, service.ErrAliasTaken)

		suite.e.POST("/api/v1/shorten").
			WithJSON(map[string]any{
				"url":          "https://example.com",
				"custom_alias": "myalias",
			}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.AliasConflictResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com", "", (*time.Time)(nil)).
			Once().
			Return(nil, errUnknown)

		suite.e.POST("/api/v1/shorten").
			WithJSON(map[string]any{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("ShortenURL", mock.Anything, "https://example.com", "", (*time.Time)(nil)).
			Once().
			Return(&models.URL{
				ID:          1,
				ShortCode:   "abc12345",
				OriginalURL: "https://example.com",
				IsActive:    true,
			}, nil)

		resp := suite.e.POST("/api/v1/shorten").
			WithJSON(map[string]any{"url": "https://example.com"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.HasValue("status", response.StatusSuccess)
		resp.Value("data").Object().
			HasValue("short_code", "abc12345").
			HasValue("url", "https://example.com")
	})
}

func (suite *HandlersTestSuite) TestHandleRedirect() {
	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("Resolve", mock.Anything, "missing1").
			Once().
			Return("", database.ErrURLNotFound)

		suite.e.GET("/missing1").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("Resolve", mock.Anything, "abc12345").
			Once().
			Return("", errUnknown)

		suite.e.GET("/abc12345").
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("Resolve", mock.Anything, "abc12345").
			Once().
			Return("https://example.com", nil)
		suite.urlSvcMock.
			On("RecordClick", mock.Anything, "abc12345").
			Maybe().
			Return()

		suite.e.GET("/abc12345").
			Expect().
			Status(http.StatusFound).
			Header("Location").IsEqual("https://example.com")
	})
}

func (suite *HandlersTestSuite) TestHandleDeactivateURL() {
	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "missing1").
			Once().
			Return(database.ErrURLNotFound)

		suite.e.DELETE("/api/v1/shorten/missing1").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc12345").
			Once().
			Return(errUnknown)

		suite.e.DELETE("/api/v1/shorten/abc12345").
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("DeactivateURL", mock.Anything, "abc12345").
			Once().
			Return(nil)

		suite.e.DELETE("/api/v1/shorten/abc12345").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("status", response.StatusSuccess)
	})
}

func (suite *HandlersTestSuite) TestHandleGetURLStats() {
	suite.Run("url not found", func() {
		suite.urlSvcMock.
			On("GetURLStats", mock.Anything, "missing1").
			Once().
			Return(nil, database.ErrURLNotFound)

		suite.e.GET("/api/v1/shorten/missing1/stats").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.
			On("GetURLStats", mock.Anything, "abc12345").
			Once().
			Return(&models.URL{
				ID:          1,
				ShortCode:   "abc12345",
				OriginalURL: "https://example.com",
				TotalClicks: 7,
				IsActive:    true,
			}, nil)

		resp := suite.e.GET("/api/v1/shorten/abc12345/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("status", response.StatusSuccess)
		resp.Value("data").Object().
			HasValue("short_code", "abc12345").
			HasValue("total_clicks", 7)
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
