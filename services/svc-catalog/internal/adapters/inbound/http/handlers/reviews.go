package handlers

import (
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	reviews, err := h.app.Queries.ListReviews.Execute(r.Context(), queries.ListReviewsQuery{ProductID: productID})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusOK, mapSlice(reviews, toReviewResponse))
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	author, ok := principal(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")

		return
	}

	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.app.Commands.CreateReview.Handle(r.Context(), commands.CreateReviewCommand{
		Author:    author,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.created(w, r, "/reviews/"+review.ID.String(), toReviewResponse(review))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")

		return
	}

	id, err := reviewIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if _, err := h.app.Commands.DeleteReview.Handle(r.Context(), commands.DeleteReviewCommand{Actor: actor, ID: id}); err != nil {
		h.writeError(w, r, err)

		return
	}

	noContent(w)
}
