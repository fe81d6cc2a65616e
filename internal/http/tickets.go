package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayushbhandari/event-tickets/internal/events"
)

type ticketResponse struct {
	Ticket events.Ticket `json:"ticket"`
}

// handleCreateTicket stores the posted document as is. When the body names
// no userid the caller's session supplies it.
func (r *Router) handleCreateTicket(w http.ResponseWriter, req *http.Request) {
	var fields map[string]any
	if err := decodeJSON(req, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var userID string
	if _, ok := fields[events.TicketUserField]; !ok {
		if claims := r.sessionClaims(req); claims != nil {
			userID = claims.ID
		}
	}

	t, err := r.store.CreateTicket(req.Context(), events.NewTicket(fields, userID))
	if err != nil {
		writeAppError(w, req, err, "Failed to create ticket")
		return
	}
	writeJSON(w, http.StatusCreated, ticketResponse{Ticket: t})
}

func (r *Router) handleListTicketsByID(w http.ResponseWriter, req *http.Request) {
	tickets, err := r.store.ListTicketsByID(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		writeAppError(w, req, err, "Failed to fetch tickets")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (r *Router) handleListUserTickets(w http.ResponseWriter, req *http.Request) {
	tickets, err := r.store.ListTicketsByUser(req.Context(), chi.URLParam(req, "userId"))
	if err != nil {
		writeAppError(w, req, err, "Failed to fetch user tickets")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (r *Router) handleDeleteTicket(w http.ResponseWriter, req *http.Request) {
	if err := r.store.DeleteTicket(req.Context(), chi.URLParam(req, "id")); err != nil {
		writeAppError(w, req, err, "Failed to delete ticket")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
