package handlers

import (
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
)

func (h *WalletHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	users, err := h.wallet.ListUsers(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, users, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeUser, Username: username})
	if !ok {
		return
	}

	user, err := h.wallet.GetUser(r.Context(), username)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, user, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	if err := h.wallet.DeleteUser(r.Context(), r.PathValue("username")); err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "User deleted"}, verdict.RefreshedTokenMessage)
}
