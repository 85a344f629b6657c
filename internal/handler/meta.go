package handler

import (
	"net/http"

	"github.com/hawy/hawy-go/internal/knowledge"
)

const serviceName = "Hawy TaeKwon-Do Chatbot"

// HandleHealth handles GET /api/health requests.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// HandleKnowledge handles GET /api/knowledge requests.
func HandleKnowledge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]knowledge.Category{
		"categories": knowledge.Categories(),
	})
}
