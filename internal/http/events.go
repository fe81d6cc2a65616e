package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
	"github.com/ayushbhandari/event-tickets/internal/events"
	"github.com/ayushbhandari/event-tickets/internal/logger"
	"github.com/ayushbhandari/event-tickets/internal/media"
	"github.com/ayushbhandari/event-tickets/internal/validate"
)

var eventDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// handleCreateEvent takes a multipart form with the event fields and an
// "image" file. Fields are parsed before the upload so a bad form never
// leaves an orphaned image behind.
func (r *Router) handleCreateEvent(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadSize)
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	e, err := eventFromForm(req.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := e.Validate(req.Context()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := r.uploader.Upload(req.Context(), header.Filename, file)
	if err != nil {
		if media.IsInvalidImage(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeAppError(w, req, err, "Failed to upload the event image")
		return
	}
	e.Image = url

	created, err := r.store.CreateEvent(req.Context(), e)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeAppError(w, req, err, "Failed to save the event")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// eventFromForm reads the event fields of a create form. Server-owned
// fields (likes, likedBy, image) are never taken from the caller.
func eventFromForm(form *multipart.Form) (*events.Event, error) {
	get := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	e := &events.Event{
		Owner:       get("owner"),
		Title:       get("title"),
		Description: get("description"),
		OrganizedBy: get("organizedBy"),
		EventTime:   get("eventTime"),
		Location:    get("location"),
		Comment:     form.Value["Comment"],
	}

	if raw := get("eventDate"); raw != "" {
		d, err := parseEventDate(raw)
		if err != nil {
			return nil, err
		}
		e.EventDate = &d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"Participants", &e.Participants},
		{"Count", &e.Count},
		{"Quantity", &e.Quantity},
	}
	for _, f := range ints {
		raw := get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", f.key)
		}
		*f.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"Income", &e.Income},
		{"ticketPrice", &e.TicketPrice},
	}
	for _, f := range floats {
		raw := get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.key)
		}
		*f.dst = n
	}
	return e, nil
}

func parseEventDate(raw string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("eventDate must be a date")
}

func (r *Router) handleListEvents(w http.ResponseWriter, req *http.Request) {
	list, err := r.store.ListEvents(req.Context())
	if err != nil {
		writeAppError(w, req, err, "Failed to fetch events")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetEvent answers null for unknown or malformed ids.
func (r *Router) handleGetEvent(w http.ResponseWriter, req *http.Request) {
	e, err := r.store.GetEvent(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		writeAppError(w, req, err, "Failed to fetch event")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

type likeRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (r *Router) handleToggleLike(w http.ResponseWriter, req *http.Request) {
	var in likeRequest
	if err := decodeJSON(req, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(req.Context(), in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	eventID := chi.URLParam(req, "id")
	e, err := r.store.ToggleLike(req.Context(), eventID, in.UserID)
	if err != nil {
		writeAppError(w, req, err, "Server error")
		return
	}

	liked := e.HasLiker(in.UserID)
	r.metrics.ObserveToggle(liked)
	logger.FromContext(req.Context()).Debug().
		Str("event_id", eventID).
		Bool("liked", liked).
		Int("likes", e.Likes).
		Msg("like toggled")
	writeJSON(w, http.StatusOK, e)
}
