package http

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayushbhandari/event-tickets/internal/auth"
)

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(req, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON")
		return
	}
	u, err := r.sessions.Register(req.Context(), in)
	if err != nil {
		writeAppError(w, req, err, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var in loginRequest
	if err := decodeJSON(req, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	token, u, err := r.sessions.Login(req.Context(), in.Email, in.Password)
	if err != nil {
		writeAppError(w, req, err, "Failed to log in")
		return
	}
	r.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, u)
}

type profileResponse struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) {
	u, err := r.sessions.Profile(req.Context(), sessionToken(req))
	if err != nil {
		writeAppError(w, req, err, "Failed to load profile")
		return
	}
	if u == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	r.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, true)
}

func (r *Router) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, r.sessionCookie(token, 0))
}

func (r *Router) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, r.sessionCookie("", -1))
}

// Browsers only send a cross-site cookie with SameSite=None, which in turn
// requires Secure.
func (r *Router) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     tokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if r.cookieSecure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func sessionToken(req *http.Request) string {
	c, err := req.Cookie(tokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// sessionClaims returns the caller's claims, or nil without a valid session.
func (r *Router) sessionClaims(req *http.Request) *auth.Claims {
	token := sessionToken(req)
	if token == "" {
		return nil
	}
	claims, err := r.sessions.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}
