package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/login"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/server/auth"
	"github.com/dmitrijs2005/userforms/internal/signup"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Handler serves the API on top of one signup and one login flow. Flows
// are not safe for concurrent use, so requests are serialised and every
// request reloads the stored list before acting on it.
type Handler struct {
	mu     sync.Mutex
	signup *signup.Flow
	login  *login.Flow
	logger logging.Logger

	secretKey []byte
	tokenTTL  time.Duration
}

func NewHandler(s *signup.Flow, l *login.Flow, logger logging.Logger, secretKey string, tokenTTL time.Duration) *Handler {
	return &Handler{
		signup:    s,
		login:     l,
		logger:    logger.With("module", "http_api"),
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// userView is a stored user without its password.
type userView struct {
	Name   string                   `json:"name"`
	Email  string                   `json:"email"`
	Fields []models.FieldDefinition `json:"fields"`
}

func viewOf(u models.UserRecord) userView {
	c := u.Clone()
	return userView{Name: c.Name, Email: c.Email, Fields: c.Fields}
}

func viewsOf(list []models.UserRecord) []userView {
	out := make([]userView, len(list))
	for i, u := range list {
		out[i] = viewOf(u)
	}
	return out
}

type loginResponse struct {
	Message string   `json:"message"`
	User    userView `json:"user"`
	Token   string   `json:"token"`
}

// notice keeps the last message a login flow reported.
type notice struct {
	msg string
}

func (n *notice) Notify(_ context.Context, msg string) { n.msg = msg }

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func pathIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", chi.URLParam(r, "index"), common.ErrIndexOutOfRange)
	}
	return i, nil
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, err := h.signup.LoadAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, viewsOf(list))
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var form signup.Form
	if err := decode(r, &form); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.signup.LoadAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.signup.Submit(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, viewOf(u))
}

// handleEditUser replaces user {index}. An empty password keeps the stored
// one.
func (h *Handler) handleEditUser(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in signup.Form
	if err := decode(r, &in); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.signup.LoadAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.signup.BeginEdit(r.Context(), i); err != nil {
		h.writeError(w, r, err)
		return
	}

	form := h.signup.EditForm()
	form.Name = in.Name
	form.Email = in.Email
	if in.Password != "" {
		form.Password = in.Password
	}
	form.Fields = in.Fields

	u, err := h.signup.SubmitEdit(r.Context())
	if err != nil {
		h.signup.CancelEdit()
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, viewOf(u))
}

// handleDeleteUser removes user {index}. The caller confirms with
// ?confirm=true; without it nothing is removed and 409 carries the question.
func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	i, err := pathIndex(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.signup.LoadAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.signup.DeleteUser(r.Context(), i, signup.ConfirmFunc(func(context.Context, string) (bool, error) {
		return confirmed, nil
	}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		respondWithJSON(w, http.StatusConflict, messageResponse{Message: signup.DeletePrompt})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearUsers(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.signup.ClearAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLoginFields(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.login.Load(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.login.Schema())
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form login.LoginForm
	if err := decode(r, &form); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.login.Load(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	n := &notice{}
	u, err := h.login.Submit(r.Context(), form, n)
	switch {
	case n.msg == login.MessageFailure:
		respondWithJSON(w, http.StatusUnauthorized, messageResponse{Message: n.msg})
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(u.Email, h.secretKey, h.tokenTTL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, loginResponse{Message: n.msg, User: viewOf(u), Token: token})
}

// handleMe returns the first stored user with the token's email.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := emailFromContext(r.Context())
	if !ok {
		h.writeError(w, r, common.ErrInvalidToken)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	list, err := h.login.Load(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	for _, u := range list {
		if u.Email == email {
			respondWithJSON(w, http.StatusOK, viewOf(u))
			return
		}
	}
	h.writeError(w, r, fmt.Errorf("user %s is gone: %w", email, common.ErrInvalidToken))
}
