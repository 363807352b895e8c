package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

func (h *WalletHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.wallet.CreateCategory(r.Context(), &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, category, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.wallet.UpdateCategory(r.Context(), r.PathValue("type"), req.Color)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, category, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	if err := h.wallet.DeleteCategory(r.Context(), r.PathValue("type")); err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "Category deleted"}, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{
		Mode:     authz.ModeUser,
		Username: r.PathValue("username"),
	})
	if !ok {
		return
	}

	categories, err := h.wallet.ListCategories(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, categories, verdict.RefreshedTokenMessage)
}
