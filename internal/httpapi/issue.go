package httpapi

import (
	"encoding/json"
	"net/http"

	"vishwaspatra/internal/service"
)

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req service.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.HTML == "" || req.StudentID == "" || req.TemplateID == "" ||
		req.StudentWallet == "" || req.CollegeWallet == "" || req.CollegeID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	result, err := h.issuance.IssueCertificate(r.Context(), &req)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGenerateSBT(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateSBTRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CollegeName == "" || req.RegID == "" || req.WalletID == "" || req.CollegeID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	result, err := h.sbt.GenerateCollegeSBT(r.Context(), &req)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSBTOwner(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	contract := r.URL.Query().Get("contract")
	if wallet == "" || contract == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "wallet and contract are required"})
		return
	}

	verified, err := h.sbt.VerifySBTOwner(r.Context(), wallet, contract)
	if err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}
