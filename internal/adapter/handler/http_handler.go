package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/core/service"
	"github.com/rl1809/aura-kitchen/internal/metrics"
)

const (
	SessionCookieName    = "aura_sid"
	IdempotencyKeyHeader = "Idempotency-Key"

	maxBodyBytes = 1 << 20
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, idempotencyKey string, sub domain.OrderSubmission) (*domain.Order, error)
}

type MenuReader interface {
	List(ctx context.Context, f service.MenuFilter) ([]domain.MenuItem, error)
	Get(ctx context.Context, id int64) (*domain.MenuItem, error)
}

type ReviewIntake interface {
	List(ctx context.Context) ([]domain.Review, error)
	Create(ctx context.Context, sub domain.ReviewSubmission) (*domain.Review, error)
}

type ContactIntake interface {
	Create(ctx context.Context, sub domain.MessageSubmission) (*domain.Message, error)
}

type Authenticator interface {
	Register(ctx context.Context, creds domain.Credentials) (*domain.User, string, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
	SessionTTL() time.Duration
}

type Services struct {
	Orders  OrderPlacer
	Menu    MenuReader
	Reviews ReviewIntake
	Contact ContactIntake
	Auth    Authenticator
}

type HTTPHandler struct {
	svc         Services
	log         logrus.FieldLogger
	authLimiter *RateLimiter
	secure      bool
}

type ErrorResponse struct {
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type Option func(*HTTPHandler)

// WithAuthLimiter replaces the per-IP limiter guarding login and register.
func WithAuthLimiter(rl *RateLimiter) Option {
	return func(h *HTTPHandler) { h.authLimiter = rl }
}

// WithSecureCookies marks the session cookie Secure, for TLS deployments.
func WithSecureCookies() Option {
	return func(h *HTTPHandler) { h.secure = true }
}

func NewHTTPHandler(svc Services, log logrus.FieldLogger, opts ...Option) *HTTPHandler {
	h := &HTTPHandler{
		svc:         svc,
		log:         log,
		authLimiter: NewRateLimiter(1, 5),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires every route and the middleware chain.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recoverer(h.log), RequestLogger(h.log), metrics.InstrumentHandler)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/menu", h.ListMenu).Methods(http.MethodGet)
	api.HandleFunc("/menu/{id}", h.GetMenuItem).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/reviews", h.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/reviews", h.CreateReview).Methods(http.MethodPost)
	api.HandleFunc("/contact", h.CreateMessage).Methods(http.MethodPost)
	api.HandleFunc("/user", h.CurrentUser).Methods(http.MethodGet)
	api.Handle("/register", h.authLimiter.Handler(http.HandlerFunc(h.Register))).Methods(http.MethodPost)
	api.Handle("/login", h.authLimiter.Handler(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.MenuFilter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
	}
	if popular := q.Get("popular"); popular != "" {
		on, err := strconv.ParseBool(popular)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid menu filter",
				domain.FieldError{Field: "popular", Message: "must be true or false"})
			return
		}
		filter.PopularOnly = on
	}

	items, err := h.svc.Menu.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err, "Invalid menu filter", "Failed to fetch menu")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	item, err := h.svc.Menu.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	if err != nil {
		h.fail(w, r, err, "", "Failed to fetch menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var sub domain.OrderSubmission
	if !decodeJSON(w, r, &sub, "Invalid order data") {
		return
	}

	order, err := h.svc.Orders.PlaceOrder(r.Context(), r.Header.Get(IdempotencyKeyHeader), sub)
	if err != nil {
		h.fail(w, r, err, "Invalid order data", "Failed to create order")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "", "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *HTTPHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var sub domain.ReviewSubmission
	if !decodeJSON(w, r, &sub, "Invalid review data") {
		return
	}

	review, err := h.svc.Reviews.Create(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err, "Invalid review data", "Failed to create review")
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *HTTPHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var sub domain.MessageSubmission
	if !decodeJSON(w, r, &sub, "Invalid contact data") {
		return
	}

	msg, err := h.svc.Contact.Create(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err, "Invalid contact data", "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *HTTPHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Auth.CurrentUser(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err, "", "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds, "Invalid registration data") {
		return
	}

	user, sid, err := h.svc.Auth.Register(r.Context(), creds)
	if err != nil {
		h.fail(w, r, err, "Invalid registration data", "Failed to register")
		return
	}
	h.setSessionCookie(w, sid)
	writeJSON(w, http.StatusCreated, user)
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds, "Invalid login data") {
		return
	}

	user, sid, err := h.svc.Auth.Login(r.Context(), creds)
	if err != nil {
		h.fail(w, r, err, "Invalid login data", "Failed to log in")
		return
	}
	h.setSessionCookie(w, sid)
	writeJSON(w, http.StatusOK, user)
}

// Logout always succeeds from the client's point of view.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		if err := h.svc.Auth.Logout(r.Context(), sid); err != nil {
			h.log.WithError(err).Warn("logout: delete session failed")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a service error to a response. invalidMsg is used for
// validation failures; internalMsg for everything unexpected.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error, invalidMsg, internalMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, invalidMsg, verr.Fields...)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "Duplicate request")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username already taken")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

func (h *HTTPHandler) setSessionCookie(w http.ResponseWriter, sid string) {
	ttl := h.svc.Auth.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, invalidMsg string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, invalidMsg,
			domain.FieldError{Field: "body", Message: "must be valid JSON"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string, details ...domain.FieldError) {
	writeJSON(w, status, ErrorResponse{Message: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
