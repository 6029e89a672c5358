package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vijaysathappan4/Tourdoxa/internal/geo"
	"github.com/Vijaysathappan4/Tourdoxa/internal/location"
	"github.com/Vijaysathappan4/Tourdoxa/internal/notify"
	"github.com/Vijaysathappan4/Tourdoxa/internal/selection"
	"github.com/Vijaysathappan4/Tourdoxa/internal/templates"
	"github.com/Vijaysathappan4/Tourdoxa/internal/viewstate"
	"github.com/Vijaysathappan4/Tourdoxa/internal/views"
)

// respond swaps fragment into htmx requests and re-renders the whole page otherwise.
// Both are built under the activation lock so they observe one consistent state.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, rq *request, act *viewstate.Activation, fragment func() templ.Component) {
	var component templ.Component
	var page templates.PageData
	_ = act.Do(func() error {
		if rq.htmx {
			component = fragment()
		} else {
			page = h.pageData(r, rq, act)
		}
		return nil
	})
	if rq.htmx {
		h.render(w, r, rq, http.StatusOK, component)
		return
	}
	h.renderPage(w, r, rq, http.StatusOK, page)
}

func (h *Handlers) logEvents(rq *request, act *viewstate.Activation) {
	for _, ev := range act.DrainEvents() {
		fields := []zap.Field{
			zap.String("activation_id", act.ID()),
			zap.String("event", string(ev.Kind)),
			zap.String("slot", ev.Slot),
		}
		if ev.Kind == viewstate.EventDropdown {
			fields = append(fields, zap.String("state", ev.State.String()))
		} else {
			fields = append(fields, zap.String("value", ev.Value))
			if ev.HadWas {
				fields = append(fields, zap.String("was", ev.Was))
			}
		}
		rq.logger.Debug("view state changed", fields...)
	}
}

// GroupToggle opens or closes the travel-group dropdown.
func (h *Handlers) GroupToggle(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Home)
	if !ok {
		return
	}
	_ = act.Do(func() error {
		act.Group().Toggle()
		h.logEvents(rq, act)
		return nil
	})
	h.respond(w, r, rq, act, func() templ.Component {
		return templates.GroupDropdown(h.groupData(rq, act))
	})
}

// GroupSelect picks a group size from the open dropdown and closes it.
func (h *Handlers) GroupSelect(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Home)
	if !ok {
		return
	}
	value := r.PostFormValue("value")
	err := act.Do(func() error {
		if err := act.Group().SelectOption(value); err != nil {
			return err
		}
		h.logEvents(rq, act)
		return nil
	})
	switch {
	case errors.Is(err, selection.ErrNotOpen):
		h.writeError(w, r, http.StatusConflict, "group dropdown is not open")
		return
	case errors.Is(err, selection.ErrInvalidOption):
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown group size %q", value))
		return
	case err != nil:
		rq.logger.Error("group select failed", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	h.respond(w, r, rq, act, func() templ.Component {
		return templates.GroupDropdown(h.groupData(rq, act))
	})
}

// GroupDismiss closes the dropdown without changing the selection.
func (h *Handlers) GroupDismiss(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Home)
	if !ok {
		return
	}
	_ = act.Do(func() error {
		act.Group().Dismiss()
		h.logEvents(rq, act)
		return nil
	})
	h.respond(w, r, rq, act, func() templ.Component {
		return templates.GroupDropdown(h.groupData(rq, act))
	})
}

// SelectCategory records the Places category and announces it.
func (h *Handlers) SelectCategory(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Places)
	if !ok {
		return
	}
	value := r.PostFormValue("category")
	category, err := h.catalog.Category(value)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", value))
		return
	}
	if err := act.Do(func() error {
		if err := act.Categories().Select(category.ID); err != nil {
			return err
		}
		h.logEvents(rq, act)
		return nil
	}); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", value))
		return
	}
	rq.toasts.Notify(notify.New(notify.KindSuccess,
		rq.loc.F("toast.category.title", category.Name),
		rq.loc.T("toast.category.description"),
	))
	h.respond(w, r, rq, act, func() templ.Component {
		return templates.CategorySection(h.placesData(rq, act))
	})
}

// SelectService records the Booking service and reveals its booking panel.
func (h *Handlers) SelectService(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Booking)
	if !ok {
		return
	}
	value := r.PostFormValue("service")
	if err := act.Do(func() error {
		if err := act.Services().Select(value); err != nil {
			return err
		}
		h.logEvents(rq, act)
		return nil
	}); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown service %q", value))
		return
	}
	h.respond(w, r, rq, act, func() templ.Component {
		return templates.ServiceSection(h.bookingData(rq, act))
	})
}

// MapPanel serves the location panel, waiting briefly for a pending location so the
// page's poll resolves in as few round trips as possible.
func (h *Handlers) MapPanel(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Home)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.mapWait)
	defer cancel()
	act.Location().Wait(ctx)

	h.render(w, r, rq, http.StatusOK, templates.MapPanel(h.mapData(rq, act)))
}

// ReportLocation receives the browser's geolocation outcome for a Home activation.
// The form carries either lat/lng or an error code.
func (h *Handlers) ReportLocation(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	act, ok := h.activation(w, r, rq, chi.URLParam(r, "id"), views.Home)
	if !ok {
		return
	}

	var (
		coord     geo.Coordinate
		reportErr error
	)
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	if r.PostForm.Has("error") {
		reportErr = location.ParseBrowserError(r.PostForm.Get("error"))
	} else {
		var err error
		coord, err = location.ParseBrowserPosition(r.PostForm.Get("lat"), r.PostForm.Get("lng"))
		if err != nil {
			rq.logger.Warn("invalid browser position", zap.Error(err))
			reportErr = fmt.Errorf("%w: %w", location.ErrUnavailable, err)
		}
	}

	if err := act.Locator().Report(coord, reportErr); err != nil {
		switch {
		case errors.Is(err, location.ErrAlreadyReported):
			h.writeError(w, r, http.StatusConflict, "location already reported")
			return
		case errors.Is(err, location.ErrAlreadyResolved):
			h.writeError(w, r, http.StatusConflict, "location request already resolved")
			return
		}
		rq.logger.Error("report location", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Release ends the activation; the page sends it when it is hidden for good.
func (h *Handlers) Release(w http.ResponseWriter, r *http.Request) {
	rq := h.request(r)
	if err := h.registry.Release(chi.URLParam(r, "id"), rq.owner); err != nil {
		h.activationError(w, r, rq, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
