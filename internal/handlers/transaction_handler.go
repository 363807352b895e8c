package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

func (h *WalletHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeUser, Username: username})
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.wallet.CreateTransaction(r.Context(), username, &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, tx, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) ListUserTransactions(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeUser, Username: username})
	if !ok {
		return
	}

	txs, err := h.wallet.ListUserTransactions(r.Context(), username)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, txs, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeUser, Username: username})
	if !ok {
		return
	}

	if err := h.wallet.DeleteTransaction(r.Context(), username, r.PathValue("id")); err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "Transaction deleted"}, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	txs, err := h.wallet.ListTransactions(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, txs, verdict.RefreshedTokenMessage)
}
