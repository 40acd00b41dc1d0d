package admin

import (
	"net/http"

	"github.com/nanopics/NanoBananaBot/internal/api"
)

// ResetRecords wipes all usage records, same as the reset command.
func (s Service) ResetRecords(w http.ResponseWriter, r *http.Request) {
	s.bot.Quota.Reset()
	api.WriteResponse(w, map[string]string{"status": api.StatusOk})
}
