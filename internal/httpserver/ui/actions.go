package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/catalog"
	"github.com/Vijaysathappan4/Tourdoxa/internal/notify"
	"github.com/Vijaysathappan4/Tourdoxa/internal/templates"
)

// unimplemented is the standard placeholder toast for a feature that is announced but
// not built yet. feature is the display name shown in the title.
func unimplemented(rq *request, feature string) notify.Notification {
	return notify.Info(
		rq.loc.F("toast.unimplemented.title", feature),
		rq.loc.T("toast.unimplemented.description"),
	)
}

// finishAction delivers the toasts of a placeholder action. htmx callers get an empty
// 204 with an HX-Trigger header; plain form posts land back on the page they came from
// with the toasts rendered inline. echo may copy submitted values into that page.
func (h *Handlers) finishAction(w http.ResponseWriter, r *http.Request, rq *request, echo func(*templates.PageData)) {
	if rq.htmx {
		if err := rq.toasts.WriteTrigger(w.Header()); err != nil {
			rq.logger.Warn("toast trigger encode failed", zap.Error(err))
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	act, err := h.registry.Get(r.PostFormValue("activation"), rq.owner)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	var page templates.PageData
	_ = act.Do(func() error {
		page = h.pageData(r, rq, act)
		return nil
	})
	if echo != nil {
		echo(&page)
	}
	h.renderPage(w, r, rq, http.StatusOK, page)
}

// Search validates the Home search box. Searching itself is a placeholder.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	q := strings.TrimSpace(r.PostFormValue("q"))
	if q == "" {
		rq.toasts.Notify(notify.New(notify.KindWarning,
			rq.loc.T("toast.search.empty.title"),
			rq.loc.T("toast.search.empty.description"),
		))
	} else {
		rq.toasts.Notify(unimplemented(rq, rq.loc.T("feature.search")))
	}
	h.finishAction(w, r, rq, func(page *templates.PageData) {
		if page.Home != nil {
			page.Home.Query = q
		}
	})
}

// Directions is the placeholder behind the Home location card.
func (h *Handlers) Directions(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	rq.toasts.Notify(unimplemented(rq, rq.loc.T("feature.gps")))
	h.finishAction(w, r, rq, nil)
}

// QuickAction is the placeholder behind each Home quick action card.
func (h *Handlers) QuickAction(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	action, err := h.catalog.QuickAction(chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "unknown quick action")
		return
	}
	rq.toasts.Notify(unimplemented(rq, action.Title))
	h.finishAction(w, r, rq, nil)
}

// Book is the placeholder behind the quick booking form.
func (h *Handlers) Book(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	if id := r.PostFormValue("service"); id != "" {
		if _, err := h.catalog.Service(id); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "unknown service")
			return
		}
	}
	rq.toasts.Notify(unimplemented(rq, rq.loc.T("feature.booking")))
	h.finishAction(w, r, rq, nil)
}

// Call announces a helpline call. Only numbers listed on the Helpline view are accepted.
func (h *Handlers) Call(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	number := strings.TrimSpace(r.PostFormValue("number"))
	if !h.catalog.IsDirectoryNumber(number) {
		h.writeError(w, r, http.StatusBadRequest, "number is not in the helpline directory")
		return
	}
	rq.toasts.Notify(notify.Info(
		rq.loc.F("toast.call.title", number),
		rq.loc.T("toast.call.description"),
	))
	h.finishAction(w, r, rq, nil)
}

// Contact announces one of the About contact channels.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	channel, err := h.catalog.ContactChannel(r.PostFormValue("type"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, r, http.StatusBadRequest, "unknown contact channel")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	rq.toasts.Notify(notify.Info(
		rq.loc.F("toast.contact.title", channel.Type),
		rq.loc.T("toast.contact.description"),
	))
	h.finishAction(w, r, rq, nil)
}
