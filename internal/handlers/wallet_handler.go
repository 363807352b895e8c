package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/logging"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
	"github.com/mattiachiarle/ezwallet-sub000/internal/service"
)

// WalletHandler exposes the category, transaction, group, and user-admin
// endpoints. Every handler builds an authorization descriptor from its
// route parameters and consults the evaluator before touching data.
type WalletHandler struct {
	wallet    *service.WalletService
	evaluator *authz.Evaluator
}

func NewWalletHandler(wallet *service.WalletService, evaluator *authz.Evaluator) *WalletHandler {
	return &WalletHandler{
		wallet:    wallet,
		evaluator: evaluator,
	}
}

// authorize runs the evaluator and writes the denial or fault response
// itself. The returned verdict is only meaningful when ok is true; its
// RefreshedTokenMessage must then be forwarded on the success response.
func (h *WalletHandler) authorize(w http.ResponseWriter, r *http.Request, opts authz.Options) (authz.Verdict, bool) {
	verdict, err := h.evaluator.Verify(w, r, opts)
	if err != nil {
		slog.Error("authorization evaluation failed", logging.Error(err), logging.Path(r.URL.Path))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return verdict, false
	}
	if !verdict.Authorized {
		writeError(w, http.StatusUnauthorized, verdict.Cause)
		return verdict, false
	}
	return verdict, true
}

// writeWalletError maps data-layer failures onto the wire.
func writeWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrGroupNotFound),
		errors.Is(err, repository.ErrGroupExists),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrCategoryExists),
		errors.Is(err, repository.ErrTransactionNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("wallet operation failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
