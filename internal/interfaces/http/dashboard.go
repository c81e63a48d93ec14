package http

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// dashboardView is what the template renders: the page shell plus the initial
// comparison payload inlined as JSON so the first paint needs no API call.
type dashboardView struct {
	Title       string
	InitialJSON template.JS
	FetchFailed bool
}

// Dashboard handles GET /. A failed upstream fetch still renders the page,
// with the inline error panel instead of the chart.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{Title: h.base + " vs " + h.quote + " Return Comparison"}

	resp, _, err := h.compare(r)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard initial compare failed")
		view.FetchFailed = true
		view.InitialJSON = template.JS("null")
	} else {
		raw, err := json.Marshal(resp)
		if err != nil {
			h.writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		view.InitialJSON = template.JS(raw)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, view); err != nil {
		log.Error().Err(err).Msg("dashboard template render failed")
	}
}
