package delivery

import (
	"net/http"

	"github.com/Vovarama1992/medassist/internal/languages"
)

const welcomeMessage = "Welcome to the Healthcare Translation Web App!"

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type languagesResponse struct {
	Languages []languages.Language `json:"languages"`
}

func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponse{Languages: h.registry.Languages()})
}
