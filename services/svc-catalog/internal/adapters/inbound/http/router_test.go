package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/throttled/throttled/v2/store/memstore"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/architeacher/storefront/pkg/logger"
	metricsNoop "github.com/architeacher/storefront/pkg/metrics/noop"
	catalogHTTP "github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http"
	"github.com/architeacher/storefront/services/svc-catalog/internal/authz"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
	otherToken    = "other-customer-token"
)

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Meta       map[string]any  `json:"meta"`
	Pagination map[string]any  `json:"pagination"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type RouterTestSuite struct {
	suite.Suite

	cfg        *config.ServiceConfig
	products   *fakeProductsService
	categories *fakeCategoriesService
	reviews    *fakeReviewsService
	images     *fakeImagesService
	auth       *fakeAuthService
	database   fakePinger
	router     http.Handler
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	cfg, err := config.Init("testdata/does-not-exist.env")
	s.Require().NoError(err)

	cfg.RateLimiting.Enabled = false
	cfg.Logging.AccessLog.Enabled = false
	cfg.Telemetry.Traces.Enabled = false
	cfg.Compression.Enabled = false
	cfg.HTTPServer.ValidateRequest = true
	s.cfg = cfg

	s.products = newFakeProductsService()
	s.categories = newFakeCategoriesService()
	s.reviews = &fakeReviewsService{products: s.products, reviews: map[model.ReviewID]*model.Review{}}
	s.images = &fakeImagesService{images: map[model.ImageID]*model.Image{}, stored: map[string][]byte{}}
	s.auth = &fakeAuthService{users: map[string]*model.User{}, tokens: map[string]model.Principal{}}
	s.database = fakePinger{}

	s.auth.issue(adminToken, model.RoleAdmin)
	s.auth.issue(customerToken, model.RoleCustomer)
	s.auth.issue(otherToken, model.RoleCustomer)

	s.router = s.newRouter()
}

func (s *RouterTestSuite) newRouter() http.Handler {
	log := logger.NewTestLogger()
	metricsClient := metricsNoop.NewMetricsClient()
	tracerProvider := noop.NewTracerProvider()

	app := usecases.NewApplication(
		usecases.Services{
			Products:   s.products,
			Categories: s.categories,
			Reviews:    s.reviews,
			Images:     s.images,
			Auth:       s.auth,
		},
		usecases.QueryCaches{},
		usecases.Health{
			Database: s.database,
			Dependencies: map[string]ports.Pinger{
				queries.DependencyPostgres: s.database,
				queries.DependencyKeyDB:    fakePinger{},
			},
			Version: "test",
		},
		log,
		metricsClient,
		tracerProvider,
	)

	enforcer, err := authz.NewEnforcer()
	s.Require().NoError(err)

	store, err := memstore.NewCtx(100)
	s.Require().NoError(err)

	router, err := catalogHTTP.NewRouter(catalogHTTP.RouterConfig{
		App:            app,
		Config:         s.cfg,
		Logger:         log,
		MetricsClient:  metricsClient,
		TracerProvider: tracerProvider,
		Auth:           s.auth,
		Authorizer:     enforcer,
		RateLimitStore: store,
	})
	s.Require().NoError(err)

	return router
}

func (s *RouterTestSuite) do(method, target, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		s.Require().NoError(err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *RouterTestSuite) decodeData(rec *httptest.ResponseRecorder, dst any) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	if dst != nil {
		s.Require().NoError(json.Unmarshal(env.Data, dst))
	}

	return env
}

func (s *RouterTestSuite) requireError(rec *httptest.ResponseRecorder, status int, code string) errorBody {
	s.Require().Equal(status, rec.Code, rec.Body.String())

	var body errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Equal(code, body.Code)

	return body
}

func (s *RouterTestSuite) createProduct(name string, price float64) map[string]any {
	rec := s.do(http.MethodPost, "/v1/products", adminToken, map[string]any{
		"name":  name,
		"price": price,
		"stock": 3,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var product map[string]any
	s.decodeData(rec, &product)

	return product
}

func (s *RouterTestSuite) TestProbes() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/v1/liveness", "", nil).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/v1/readiness", "", nil).Code)

	rec := s.do(http.MethodGet, "/v1/health", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("no-store", rec.Header().Get("Cache-Control"))

	var report queries.HealthResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &report))
	s.Require().Equal(queries.HealthStatusHealthy, report.Status)
	s.Require().Contains(report.Dependencies, queries.DependencyPostgres)
}

func (s *RouterTestSuite) TestProbesWithDatabaseDown() {
	s.database = fakePinger{err: errors.New("connection refused")}
	s.router = s.newRouter()

	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/v1/liveness", "", nil).Code)
	s.Require().Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/v1/readiness", "", nil).Code)
	s.Require().Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/v1/health", "", nil).Code)
}

func (s *RouterTestSuite) TestProductLifecycle() {
	product := s.createProduct("Desk lamp", 25.5)
	id := product["id"].(string)

	s.Require().Equal(true, product["inStock"])

	rec := s.do(http.MethodGet, "/v1/products/"+id, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotEmpty(rec.Header().Get("Last-Modified"))
	s.Require().Equal("BYPASS", rec.Header().Get("Cache-Status"))
	s.Require().Equal("no-cache", rec.Header().Get("Cache-Control"))

	etag := rec.Header().Get("ETag")
	s.Require().NotEmpty(etag)

	env := s.decodeData(rec, nil)
	s.Require().Equal("v1", env.Meta["apiVersion"])
	s.Require().NotEmpty(env.Meta["requestId"])

	rec = s.do(http.MethodGet, "/v1/products/"+id, "", nil, "If-None-Match", etag)
	s.Require().Equal(http.StatusNotModified, rec.Code)
	s.Require().Empty(rec.Body.String())

	rec = s.do(http.MethodPut, "/v1/products/"+id, adminToken, map[string]any{"name": "Desk lamp", "price": 30, "stock": 0})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().NotEqual(etag, rec.Header().Get("ETag"))

	var updated map[string]any
	s.decodeData(rec, &updated)
	s.Require().Equal(false, updated["inStock"])

	rec = s.do(http.MethodGet, "/v1/products/"+id, "", nil, "If-None-Match", etag)
	s.Require().Equal(http.StatusOK, rec.Code)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/v1/products/"+id, adminToken, nil).Code)
	s.requireError(s.do(http.MethodGet, "/v1/products/"+id, "", nil), http.StatusNotFound, "NOT_FOUND")
}

func (s *RouterTestSuite) TestCreateProductSetsLocation() {
	rec := s.do(http.MethodPost, "/v1/products", adminToken, map[string]any{"name": "Chair"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var product map[string]any
	s.decodeData(rec, &product)

	s.Require().Equal("/v1/products/"+product["id"].(string), rec.Header().Get("Location"))
	s.Require().NotEmpty(rec.Header().Get("ETag"))
}

func (s *RouterTestSuite) TestProductWritesRequireAdmin() {
	body := map[string]any{"name": "Chair"}

	s.requireError(s.do(http.MethodPost, "/v1/products", "", body), http.StatusUnauthorized, "UNAUTHORIZED")
	s.requireError(s.do(http.MethodPost, "/v1/products", customerToken, body), http.StatusForbidden, "FORBIDDEN")
	s.requireError(s.do(http.MethodPost, "/v1/products", "unknown", body), http.StatusUnauthorized, "INVALID_TOKEN")
}

func (s *RouterTestSuite) TestProductValidation() {
	rec := s.do(http.MethodPost, "/v1/products", adminToken, map[string]any{"name": "  ", "price": -1})
	body := s.requireError(rec, http.StatusBadRequest, "VALIDATION_ERROR")
	s.Require().Len(body.Details["errors"], 2)

	s.requireError(s.do(http.MethodPost, "/v1/products", adminToken, map[string]any{"name": "x", "colour": "red"}),
		http.StatusBadRequest, "VALIDATION_ERROR")
	s.requireError(s.do(http.MethodPost, "/v1/products", adminToken, map[string]any{"name": "x", "categoryId": "nope"}),
		http.StatusBadRequest, "INVALID_ID")
	s.requireError(s.do(http.MethodGet, "/v1/products/not-an-id", "", nil), http.StatusBadRequest, "INVALID_ID")
}

func (s *RouterTestSuite) TestListProducts() {
	s.createProduct("Lamp", 20)
	s.createProduct("Chair", 80)

	rec := s.do(http.MethodGet, "/v1/products?q=price:gt:10&exclude=brand:eq:Acme&sort=-price,name&page=1&size=5", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().Equal("BYPASS", rec.Header().Get("Cache-Status"))

	var products []map[string]any
	env := s.decodeData(rec, &products)

	s.Require().Len(products, 2)
	s.Require().EqualValues(2, env.Pagination["totalItems"])
	s.Require().EqualValues(5, env.Pagination["size"])

	criteria := s.products.criteria()
	s.Require().True(criteria.HasSpec())
	s.Require().Len(criteria.Sorting(), 2)
	s.Require().Equal(uint(1), criteria.Page())
	s.Require().Equal(uint(5), criteria.Size())
}

func (s *RouterTestSuite) TestListProductsDefaults() {
	rec := s.do(http.MethodGet, "/v1/products", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	criteria := s.products.criteria()
	s.Require().False(criteria.HasSpec())
	s.Require().Equal(model.DefaultPage, criteria.Page())
	s.Require().Equal(model.DefaultSize, criteria.Size())
}

func (s *RouterTestSuite) TestListProductsRejectsBadFilters() {
	cases := []struct {
		name   string
		target string
		code   string
	}{
		{name: "malformed", target: "/v1/products?q=price", code: "INVALID_FILTER"},
		{name: "unknown field", target: "/v1/products?q=colour:eq:red", code: "INVALID_FILTER"},
		{name: "unknown operation", target: "/v1/products?q=price:approx:10", code: "INVALID_FILTER"},
		{name: "bad value", target: "/v1/products?q=price:gt:cheap", code: "INVALID_FILTER"},
		{name: "unsortable field", target: "/v1/products?sort=description", code: "INVALID_FILTER"},
		{name: "size out of range", target: "/v1/products?size=1000", code: "VALIDATION_ERROR"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.requireError(s.do(http.MethodGet, tc.target, "", nil), http.StatusBadRequest, tc.code)
		})
	}
}

func (s *RouterTestSuite) TestSearchProducts() {
	s.createProduct("Lamp", 20)

	rec := s.do(http.MethodPost, "/v1/products/search", "", map[string]any{
		"all":  []map[string]any{{"field": "price", "op": "gte", "value": 10}},
		"none": []map[string]any{{"field": "name", "op": "contains", "value": "broken"}},
		"any": []map[string]any{
			{"field": "brand", "op": "eq", "value": "Acme"},
			{"field": "stock", "op": "gt", "value": 0},
		},
		"sort": []string{"-rating"},
		"page": 1,
		"size": 10,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var products []map[string]any
	s.decodeData(rec, &products)
	s.Require().Len(products, 1)

	criteria := s.products.criteria()
	s.Require().True(criteria.HasSpec())
	s.Require().Equal(uint(10), criteria.Size())

	s.requireError(s.do(http.MethodPost, "/v1/products/search", "", map[string]any{
		"all": []map[string]any{{"field": "price", "value": 10}},
	}), http.StatusBadRequest, "VALIDATION_ERROR")
}

func (s *RouterTestSuite) TestCategories() {
	rec := s.do(http.MethodPost, "/v1/categories", adminToken, map[string]any{"name": "Lighting"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var category map[string]any
	s.decodeData(rec, &category)
	id := category["id"].(string)

	s.requireError(s.do(http.MethodPost, "/v1/categories", adminToken, map[string]any{"name": "lighting"}),
		http.StatusConflict, "CONFLICT")
	s.requireError(s.do(http.MethodPost, "/v1/categories", customerToken, map[string]any{"name": "Chairs"}),
		http.StatusForbidden, "FORBIDDEN")

	var categories []map[string]any
	s.decodeData(s.do(http.MethodGet, "/v1/categories", "", nil), &categories)
	s.Require().Len(categories, 1)

	rec = s.do(http.MethodPut, "/v1/categories/"+id, adminToken, map[string]any{"name": "Lamps", "description": "All lamps"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decodeData(rec, &category)
	s.Require().Equal("Lamps", category["name"])

	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/v1/categories/"+id, "", nil).Code)
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/v1/categories/"+id, adminToken, nil).Code)
	s.requireError(s.do(http.MethodGet, "/v1/categories/"+id, "", nil), http.StatusNotFound, "NOT_FOUND")
}

func (s *RouterTestSuite) TestReviews() {
	productID := s.createProduct("Lamp", 20)["id"].(string)
	path := "/v1/products/" + productID + "/reviews"

	s.requireError(s.do(http.MethodPost, path, "", map[string]any{"rating": 5}), http.StatusUnauthorized, "UNAUTHORIZED")

	rec := s.do(http.MethodPost, path, customerToken, map[string]any{"rating": 5, "comment": "bright"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var review map[string]any
	s.decodeData(rec, &review)
	reviewID := review["id"].(string)
	s.Require().Equal("/v1/reviews/"+reviewID, rec.Header().Get("Location"))

	s.requireError(s.do(http.MethodPost, path, customerToken, map[string]any{"rating": 4}), http.StatusConflict, "CONFLICT")
	s.requireError(s.do(http.MethodPost, path, otherToken, map[string]any{"rating": 9}), http.StatusBadRequest, "VALIDATION_ERROR")

	var reviews []map[string]any
	s.decodeData(s.do(http.MethodGet, path, "", nil), &reviews)
	s.Require().Len(reviews, 1)

	s.requireError(s.do(http.MethodDelete, "/v1/reviews/"+reviewID, otherToken, nil), http.StatusForbidden, "FORBIDDEN")
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/v1/reviews/"+reviewID, customerToken, nil).Code)
	s.requireError(s.do(http.MethodDelete, "/v1/reviews/"+reviewID, adminToken, nil), http.StatusNotFound, "NOT_FOUND")
}

func (s *RouterTestSuite) upload(productID, contentType string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	s.Require().NoError(err)

	_, err = part.Write(data)
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/products/"+productID+"/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *RouterTestSuite) TestImages() {
	productID := s.createProduct("Lamp", 20)["id"].(string)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

	rec := s.upload(productID, "image/png", png)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var image map[string]any
	s.decodeData(rec, &image)
	s.Require().Equal("image/png", image["contentType"])
	s.Require().EqualValues(len(png), image["size"])

	detected := s.upload(productID, "application/octet-stream", png)
	s.Require().Equal(http.StatusCreated, detected.Code, detected.Body.String())

	s.requireError(s.upload(productID, "text/plain", []byte("hello")), http.StatusBadRequest, "VALIDATION_ERROR")

	var images []map[string]any
	s.decodeData(s.do(http.MethodGet, "/v1/products/"+productID+"/images", "", nil), &images)
	s.Require().Len(images, 2)
	s.Require().NotEmpty(images[0]["url"])

	imagePath := "/v1/products/" + productID + "/images/" + image["id"].(string)
	s.requireError(s.do(http.MethodDelete, imagePath, customerToken, nil), http.StatusForbidden, "FORBIDDEN")
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, imagePath, adminToken, nil).Code)
}

func (s *RouterTestSuite) TestRegisterLoginLogout() {
	credentials := map[string]any{"email": "Jo@Example.com", "password": "correct-horse"}

	rec := s.do(http.MethodPost, "/v1/auth/register", "", credentials)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var user map[string]any
	s.decodeData(rec, &user)
	s.Require().Equal("jo@example.com", user["email"])
	s.Require().Equal("customer", user["role"])

	s.requireError(s.do(http.MethodPost, "/v1/auth/register", "", credentials), http.StatusConflict, "CONFLICT")
	s.requireError(s.do(http.MethodPost, "/v1/auth/register", "", map[string]any{"email": "bad", "password": "short"}),
		http.StatusBadRequest, "VALIDATION_ERROR")

	s.requireError(s.do(http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "jo@example.com", "password": "wrong-pass"}),
		http.StatusUnauthorized, "INVALID_CREDENTIALS")

	rec = s.do(http.MethodPost, "/v1/auth/login", "", credentials)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("no-store", rec.Header().Get("Cache-Control"))

	var token map[string]any
	s.decodeData(rec, &token)
	s.Require().Equal("Bearer", token["tokenType"])

	accessToken := token["accessToken"].(string)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/v1/auth/logout", accessToken, nil).Code)
	s.requireError(s.do(http.MethodPost, "/v1/auth/logout", accessToken, nil), http.StatusUnauthorized, "INVALID_TOKEN")
	s.requireError(s.do(http.MethodPost, "/v1/auth/logout", "", nil), http.StatusUnauthorized, "UNAUTHORIZED")
}

func (s *RouterTestSuite) TestUnknownRoutes() {
	s.requireError(s.do(http.MethodGet, "/v1/nothing-here", "", nil), http.StatusNotFound, "NOT_FOUND")
	s.requireError(s.do(http.MethodPatch, "/v1/categories", adminToken, nil), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

func (s *RouterTestSuite) TestServesOpenAPIDocument() {
	rec := s.do(http.MethodGet, "/v1/openapi.yaml", "", nil)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("application/yaml", rec.Header().Get("Content-Type"))
	s.Require().Contains(rec.Body.String(), "openapi: 3.0.3")
}

func (s *RouterTestSuite) TestSecurityAndTrackingHeaders() {
	rec := s.do(http.MethodGet, "/v1/liveness", "", nil, "Request-Id", "req-42")

	s.Require().Equal("req-42", rec.Header().Get("Request-Id"))
	s.Require().NotEmpty(rec.Header().Get("Correlation-Id"))
	s.Require().Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}
