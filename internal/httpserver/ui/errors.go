package ui

import (
	"net/http"

	custommw "github.com/Vijaysathappan4/Tourdoxa/internal/httpserver/middleware"
)

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	custommw.WriteError(w, r, code, msg)
}
