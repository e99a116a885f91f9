package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
)

type (
	Options struct {
		APIVersion  string
		OrMode      model.OrMode
		CacheMaxAge uint
	}

	// Handler serves the catalog REST API on top of the application's
	// commands and queries.
	Handler struct {
		app   *usecases.Application
		opts  Options
		etags *middleware.ETagGenerator
		log   logger.Logger
	}
)

func NewHandler(app *usecases.Application, opts Options, log logger.Logger) *Handler {
	if opts.APIVersion == "" {
		opts.APIVersion = "v1"
	}

	if opts.OrMode == "" {
		opts.OrMode = model.OrModeCompat
	}

	return &Handler{
		app:   app,
		opts:  opts,
		etags: middleware.NewETagGenerator(),
		log:   log.Named("http"),
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	shared.WriteData(w, r, status, h.opts.APIVersion, data, nil)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, data any, pagination model.Pagination) {
	shared.WriteData(w, r, http.StatusOK, h.opts.APIVersion, data, shared.NewPagination(pagination))
}

func (h *Handler) created(w http.ResponseWriter, r *http.Request, location string, data any) {
	w.Header().Set(shared.HeaderLocation, "/"+h.opts.APIVersion+location)
	h.respond(w, r, http.StatusCreated, data)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func principal(r *http.Request) (model.Principal, bool) {
	return middleware.PrincipalFromContext(r.Context())
}

func productIDParam(r *http.Request) (model.ProductID, error) {
	return model.ParseProductID(chi.URLParam(r, "productID"))
}

func categoryIDParam(r *http.Request) (model.CategoryID, error) {
	return model.ParseCategoryID(chi.URLParam(r, "categoryID"))
}

func reviewIDParam(r *http.Request) (model.ReviewID, error) {
	return model.ParseReviewID(chi.URLParam(r, "reviewID"))
}

func imageIDParam(r *http.Request) (model.ImageID, error) {
	return model.ParseImageID(chi.URLParam(r, "imageID"))
}
