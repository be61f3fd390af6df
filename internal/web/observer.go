package web

import (
	"net/http"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/validate"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

// recentObservations caps the dashboard listing.
const recentObservations = 10

func (h *Handlers) handleObserverDashboard(w http.ResponseWriter, r *http.Request, account *models.Account) {
	observations, err := h.store.ListRecentByObserver(r.Context(), account.ID, recentObservations)
	data := view.Data{"User": account, "Observations": observations}
	if err != nil {
		h.log.Error(r.Context(), "list recent observations", "error", err)
		data["Observations"] = nil
		data["Error"] = "Failed to load observations."
	}
	h.render(w, r, "observer/dashboard", data)
}

func (h *Handlers) handleObservationForm(w http.ResponseWriter, r *http.Request, account *models.Account) {
	h.render(w, r, "observer/new-observation", view.Data{"User": account})
}

// handleObservationCreate validates every field server-side before anything
// is persisted; a failure re-renders the form with the submitted values and
// writes nothing.
func (h *Handlers) handleObservationCreate(w http.ResponseWriter, r *http.Request, account *models.Account) {
	form := formValues(r)

	var errs formErrors
	if !validate.Date(form["date"]) {
		errs.add("Date must be a real calendar date in YYYYMMDD format.")
	}
	if !validate.Time(form["time"]) {
		errs.add("Time must be in hh:mm:ss format.")
	}
	if form["timeZoneOffset"] == "" {
		errs.add("Time zone offset is required.")
	}
	if form["w3w"] == "" {
		errs.add("What3words location is required.")
	}
	if !validate.InRange(form["latitude"], -90, 90) {
		errs.add("Latitude must be between -90 and 90 degrees.")
	}
	if !validate.InRange(form["longitude"], -180, 180) {
		errs.add("Longitude must be between -180 and 180 degrees.")
	}
	if !validate.InRange(form["windDirection"], 0, 360) {
		errs.add("Wind direction must be between 0 and 360 degrees.")
	}
	if !validate.InRange(form["haze"], 0, 100) {
		errs.add("Haze must be between 0 and 100 percent.")
	}

	measurements := map[string]*float64{}
	obs := models.Observation{
		ObserverID:     account.ID,
		Date:           form["date"],
		Time:           form["time"],
		TimeZoneOffset: form["timeZoneOffset"],
		Notes:          form["notes"],
	}
	obs.Coordinates.W3W = form["w3w"]
	measurements["latitude"] = &obs.Coordinates.Latitude
	measurements["longitude"] = &obs.Coordinates.Longitude
	measurements["freeSpacePathLoss"] = &obs.FreeSpacePathLoss
	measurements["bitErrorRate"] = &obs.BitErrorRate
	measurements["temperature"] = &obs.Temperature
	measurements["humidity"] = &obs.Humidity
	measurements["snowfall"] = &obs.Snowfall
	measurements["windSpeed"] = &obs.WindSpeed
	measurements["windDirection"] = &obs.WindDirection
	measurements["precipitation"] = &obs.Precipitation
	measurements["haze"] = &obs.Haze

	for field, dst := range measurements {
		value, ok := parseFloatField(form[field])
		if !ok {
			errs.add("Field " + field + " must be a number.")
			continue
		}
		*dst = value
	}

	if !errs.ok() {
		h.render(w, r, "observer/new-observation", view.Data{
			"User":  account,
			"Error": errs.summary(),
			"Form":  form,
		})
		return
	}

	if _, err := h.store.CreateObservation(r.Context(), obs); err != nil {
		h.log.Error(r.Context(), "create observation", "error", err)
		h.render(w, r, "observer/new-observation", view.Data{
			"User":  account,
			"Error": "Failed to save observation. Please try again.",
			"Form":  form,
		})
		return
	}
	seeOther(w, r, "/observation/dashboard")
}

// handleObservationHistory lists all of the caller's observations, optionally
// narrowed to a from/to date range.
func (h *Handlers) handleObservationHistory(w http.ResponseWriter, r *http.Request, account *models.Account) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var (
		observations []models.Observation
		err          error
	)
	if validate.Date(from) && validate.Date(to) {
		observations, err = h.store.ListByDateRange(r.Context(), account.ID, from, to)
	} else {
		observations, err = h.store.ListHistoryByObserver(r.Context(), account.ID)
	}

	data := view.Data{"User": account, "Observations": observations}
	if err != nil {
		h.log.Error(r.Context(), "list observation history", "error", err)
		data["Observations"] = nil
		data["Error"] = "Failed to load observation history."
	}
	h.render(w, r, "observer/history", data)
}

// handleObservationView shows one observation. A missing id and a foreign id
// look identical: both land back on the caller's dashboard.
func (h *Handlers) handleObservationView(w http.ResponseWriter, r *http.Request, account *models.Account) {
	obs, err := h.store.FindObservationByID(r.Context(), r.PathValue("id"))
	if err != nil || obs.ObserverID != account.ID {
		http.Redirect(w, r, "/observation/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "observer/view-observation", view.Data{
		"User":        account,
		"Observation": obs,
	})
}
