package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	goRevoke "github.com/MrEthical07/goRevoke"
	"github.com/MrEthical07/goRevoke/middleware"
)

// Handlers binds the engine to the HTTP surface.
type Handlers struct {
	engine *goRevoke.Engine
	log    *zap.Logger
}

// NewHandlers creates the HTTP handler set. A nil logger is replaced with a
// no-op logger.
func NewHandlers(engine *goRevoke.Engine, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{engine: engine, log: log}
}

// Router builds the auth route set. Privileged routes are wrapped in the
// engine guards; login, logout, and refresh authenticate through their own
// request bodies.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)

	admin := middleware.RequireAdmin(h.engine)
	guard := middleware.Guard(h.engine)
	r.Handle("/auth/revoke-all", admin(http.HandlerFunc(h.RevokeAll))).Methods(http.MethodPost)
	r.Handle("/auth/revoke-user", guard(http.HandlerFunc(h.RevokeUser))).Methods(http.MethodPost)
	r.Handle("/auth/cleanup", admin(http.HandlerFunc(h.Cleanup))).Methods(http.MethodPost)

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type revokeUserRequest struct {
	UserID string `json:"user_id"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login authenticates a username/password pair and returns a token pair.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.engine.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAuthFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pairResponse(pair))
}

// Logout denylists the presented refresh token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	if err := h.engine.Logout(r.Context(), req.RefreshToken); err != nil {
		h.respondAuthFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Refresh rotates the presented refresh token into a new pair.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRefresh(w, r)
	if !ok {
		return
	}

	pair, err := h.engine.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondAuthFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pairResponse(pair))
}

// RevokeAll raises the global cutoff. The admin guard has already verified the
// caller; the engine re-checks the role from the injected claims.
func (h *Handlers) RevokeAll(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.AuthResultFromContext(r.Context())
	if err := h.engine.RevokeGlobal(r.Context(), caller); err != nil {
		h.respondPrivilegedFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RevokeUser raises a user cutoff. Admin, or self-service for one's own id.
func (h *Handlers) RevokeUser(w http.ResponseWriter, r *http.Request) {
	var req revokeUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, _ := middleware.AuthResultFromContext(r.Context())
	if err := h.engine.RevokeUser(r.Context(), caller, req.UserID); err != nil {
		h.respondPrivilegedFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Cleanup compacts the revocation store and reports the removal count.
func (h *Handlers) Cleanup(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.AuthResultFromContext(r.Context())
	removed, err := h.engine.Cleanup(r.Context(), caller)
	if err != nil {
		h.respondPrivilegedFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted_tokens": removed})
}

func decodeRefresh(w http.ResponseWriter, r *http.Request) (refreshRequest, bool) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return refreshRequest{}, false
	}
	return req, true
}

// respondAuthFailure collapses every credential or token failure into one
// generic 401 body; only a store outage is distinguishable, as a 500, since a
// fail-closed mutation error is a server fault and not an oracle.
func (h *Handlers) respondAuthFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, goRevoke.ErrStoreUnavailable) {
		h.log.Error("revocation store unavailable", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondError(w, http.StatusUnauthorized, "unauthorized")
}

func (h *Handlers) respondPrivilegedFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goRevoke.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, goRevoke.ErrStoreUnavailable):
		h.log.Error("revocation store unavailable", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func pairResponse(pair *goRevoke.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
