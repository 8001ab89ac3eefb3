package delivery

import (
	"net/http"
	"time"
)

const endpointTranslate = "translate"

type translateRequest struct {
	Text           string `json:"text" validate:"required"`
	SourceLanguage string `json:"source_language" validate:"required"`
	TargetLanguage string `json:"target_language" validate:"required"`
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req translateRequest
	err := decodeBody(w, r, &req, formFields{
		"text":            &req.Text,
		"source_language": &req.SourceLanguage,
		"target_language": &req.TargetLanguage,
	})
	if err == nil {
		err = h.checkStruct(req)
	}
	if err == nil {
		err = h.registry.Validate(req.SourceLanguage, req.TargetLanguage)
	}
	if err != nil {
		h.fail(w, r, endpointTranslate, err)
		return
	}
	h.stage(r, endpointTranslate, "validated",
		"source", req.SourceLanguage, "target", req.TargetLanguage, "chars", len(req.Text))

	res, err := h.translator.Translate(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.fail(w, r, endpointTranslate, err)
		return
	}
	h.stage(r, endpointTranslate, "dispatched", "model", res.ModelUsed)

	writeJSON(w, http.StatusOK, res)
	h.stage(r, endpointTranslate, "respond", "status", http.StatusOK, "took", time.Since(start))
}
