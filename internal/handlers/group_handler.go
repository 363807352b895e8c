package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/models"
)

// CreateGroup authorizes against the proposed member list: the caller must
// be one of the members of the group they are creating.
func (h *WalletHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeGroup, Emails: req.MemberEmails})
	if !ok {
		return
	}

	group, err := h.wallet.CreateGroup(r.Context(), &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, group, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.wallet.GetGroup(r.Context(), r.PathValue("name"))
	if err != nil {
		writeWalletError(w, err)
		return
	}

	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeGroup, Emails: group.MemberEmails()})
	if !ok {
		return
	}

	writeData(w, http.StatusOK, group, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	groups, err := h.wallet.ListGroups(r.Context())
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, groups, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	h.updateGroupMembers(w, r, true)
}

func (h *WalletHandler) RemoveGroupMembers(w http.ResponseWriter, r *http.Request) {
	h.updateGroupMembers(w, r, false)
}

func (h *WalletHandler) updateGroupMembers(w http.ResponseWriter, r *http.Request, add bool) {
	name := r.PathValue("name")

	group, err := h.wallet.GetGroup(r.Context(), name)
	if err != nil {
		writeWalletError(w, err)
		return
	}

	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeGroup, Emails: group.MemberEmails()})
	if !ok {
		return
	}

	var req models.GroupMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if add {
		group, err = h.wallet.AddGroupMembers(r.Context(), name, req.Emails)
	} else {
		group, err = h.wallet.RemoveGroupMembers(r.Context(), name, req.Emails)
	}
	if err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, group, verdict.RefreshedTokenMessage)
}

func (h *WalletHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	verdict, ok := h.authorize(w, r, authz.Options{Mode: authz.ModeAdmin})
	if !ok {
		return
	}

	if err := h.wallet.DeleteGroup(r.Context(), r.PathValue("name")); err != nil {
		writeWalletError(w, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "Group deleted"}, verdict.RefreshedTokenMessage)
}
