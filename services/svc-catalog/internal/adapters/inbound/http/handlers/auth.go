package handlers

import (
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
)

const tokenTypeBearer = "Bearer"

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.app.Commands.RegisterUser.Handle(r.Context(), commands.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.app.Commands.Login.Handle(r.Context(), commands.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.respond(w, r, http.StatusOK, tokenResponse{
		AccessToken: token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	})
}

// Logout revokes the token the request was authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	current, ok := principal(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")

		return
	}

	if _, err := h.app.Commands.Logout.Handle(r.Context(), commands.LogoutCommand{Principal: current}); err != nil {
		h.writeError(w, r, err)

		return
	}

	noContent(w)
}
