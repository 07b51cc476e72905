package httpapi

import (
	"errors"
	"io"
	"net/http"

	"vishwaspatra/types"
)

// 32 MiB caps uploaded certificate PDFs.
const maxUploadBytes = 32 << 20

// handleVerify accepts either a multipart PDF upload (field "file") or a bare
// hash (field "hash", alias "verify-hash") and answers with a verification
// result. Negative outcomes are 200s; only malformed input is a 400.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			h.writeVerification(w, &types.VerificationResult{
				Status:  types.StatusInvalidRequest,
				Message: "Could not parse the verification request.",
			})
			return
		}
		if err := r.ParseForm(); err != nil {
			h.writeVerification(w, &types.VerificationResult{
				Status:  types.StatusInvalidRequest,
				Message: "Could not parse the verification request.",
			})
			return
		}
	}

	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		pdf, err := io.ReadAll(file)
		if err != nil {
			h.internalError(w, err)
			return
		}

		result, err := h.verification.VerifyDocument(r.Context(), pdf)
		if err != nil {
			h.internalError(w, err)
			return
		}
		h.writeVerification(w, result)
		return
	}

	hash := r.FormValue("hash")
	if hash == "" {
		hash = r.FormValue("verify-hash")
	}
	if hash == "" {
		h.writeVerification(w, &types.VerificationResult{
			Status:  types.StatusInvalidRequest,
			Message: "No hash or PDF found for verification.",
		})
		return
	}

	result, err := h.verification.VerifyHash(r.Context(), hash)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeVerification(w, result)
}

func (h *Handler) writeVerification(w http.ResponseWriter, result *types.VerificationResult) {
	status := http.StatusOK
	switch result.Status {
	case types.StatusInvalidRequest, types.StatusNoProofFound:
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, result)
}
