package admin

import (
	"net/http"

	"github.com/nanopics/NanoBananaBot/internal/openrouter"
)

func (s Service) DisableGenerate(w http.ResponseWriter, r *http.Request) {
	openrouter.Enabled = false
}

func (s Service) EnableGenerate(w http.ResponseWriter, r *http.Request) {
	openrouter.Enabled = true
}
