package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r.URL.Query(), h.opts.OrMode)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.search(w, r, criteria)
}

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	criteria, err := req.criteria(h.opts.OrMode)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.search(w, r, criteria)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, criteria model.Criteria) {
	ctx := decorator.WithCacheStatusRecorder(r.Context())

	list, err := h.app.Queries.SearchProducts.Execute(ctx, queries.SearchProductsQuery{Criteria: criteria})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	shared.SetCacheHeaders(w, decorator.GetCacheStatus(ctx), h.opts.CacheMaxAge)
	h.respondList(w, r, mapSlice(list.Products, toProductResponse), list.Pagination)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	ctx := decorator.WithCacheStatusRecorder(r.Context())

	product, err := h.app.Queries.GetProduct.Execute(ctx, queries.GetProductQuery{ID: id})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	shared.SetCacheHeaders(w, decorator.GetCacheStatus(ctx), h.opts.CacheMaxAge)
	shared.SetLastModified(w, product.UpdatedAt)
	w.Header().Set(shared.HeaderETag, h.etags.ForVersion(product.ID.String(), product.UpdatedAt))

	h.respond(w, r, http.StatusOK, toProductResponse(product))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	attrs, err := req.attributes()
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	product, err := h.app.Commands.CreateProduct.Handle(r.Context(), commands.CreateProductCommand{Attributes: attrs})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set(shared.HeaderETag, h.etags.ForVersion(product.ID.String(), product.UpdatedAt))
	h.created(w, r, "/products/"+product.ID.String(), toProductResponse(product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	attrs, err := req.attributes()
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	product, err := h.app.Commands.UpdateProduct.Handle(r.Context(), commands.UpdateProductCommand{ID: id, Attributes: attrs})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set(shared.HeaderETag, h.etags.ForVersion(product.ID.String(), product.UpdatedAt))
	h.respond(w, r, http.StatusOK, toProductResponse(product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if _, err := h.app.Commands.DeleteProduct.Handle(r.Context(), commands.DeleteProductCommand{ID: id}); err != nil {
		h.writeError(w, r, err)

		return
	}

	noContent(w)
}

const maxJSONBody = 1 << 20

// decode reads a JSON body, rejecting unknown fields. It writes the error
// response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, codeInvalidJSON, msgInvalidJSON)

		return false
	}

	return true
}
