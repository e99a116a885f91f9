package handlers

import (
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.app.Queries.ListCategories.Execute(r.Context(), queries.ListCategoriesQuery{})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusOK, mapSlice(categories, toCategoryResponse))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	category, err := h.app.Queries.GetCategory.Execute(r.Context(), queries.GetCategoryQuery{ID: id})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.app.Commands.CreateCategory.Handle(r.Context(), commands.CreateCategoryCommand{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.created(w, r, "/categories/"+category.ID.String(), toCategoryResponse(category))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.app.Commands.UpdateCategory.Handle(r.Context(), commands.UpdateCategoryCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusOK, toCategoryResponse(category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := categoryIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if _, err := h.app.Commands.DeleteCategory.Handle(r.Context(), commands.DeleteCategoryCommand{ID: id}); err != nil {
		h.writeError(w, r, err)

		return
	}

	noContent(w)
}
