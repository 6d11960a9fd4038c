package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions SessionService
	Login    LoginFlow
	Verifier TicketVerifier
	Catalog  CatalogService
	Cookies  CookieConfig
	// Ready pings the session cache for /readyz; nil reports ready.
	Ready  Pinger
	Logger *slog.Logger
}

// NewRouter creates and configures the dashboard HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	authWrap := RequireAuth(AuthOptions{Sessions: services.Sessions, LoginPath: services.Sessions.LoginPath()})

	registerAuthRoutes(mux, &AuthHandlers{
		Login:    services.Login,
		Sessions: services.Sessions,
		Cookies:  services.Cookies,
		Logger:   logger,
	})

	tickets := &TicketHandlers{Verifier: services.Verifier}
	mux.Handle("POST /api/tickets/verify", authWrap(http.HandlerFunc(tickets.Verify)))

	prefs := &PreferenceHandlers{Sessions: services.Sessions, Logger: logger}
	mux.Handle("GET /api/preferences/{name}", authWrap(http.HandlerFunc(prefs.Get)))
	mux.Handle("PUT /api/preferences/{name}", authWrap(http.HandlerFunc(prefs.Set)))

	catalog := &CatalogHandlers{Svc: services.Catalog, Logger: logger}
	registerCRUD(mux, crudRoutes{
		Base:    "/api/{resource}",
		Create:  catalog.Create,
		List:    catalog.List,
		GetByID: catalog.GetByID,
		Update:  catalog.Update,
		Patch:   catalog.Patch,
		Delete:  catalog.Delete,
		Middleware: RequireAuth(AuthOptions{
			Sessions:  services.Sessions,
			LoginPath: services.Sessions.LoginPath(),
			Roles:     []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleOrganizer},
		}),
	})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Ready, logger))

	return Tokens(services.Cookies)(&notFoundHandler{mux: mux})
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.PasswordLogin)
	mux.HandleFunc("GET /auth/oauth2/start", h.OAuthStart)
	mux.HandleFunc("GET /auth/oauth2/callback", h.OAuthCallback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
}

// crudRoutes lists the handlers registered by registerCRUD.
type crudRoutes struct {
	Base       string
	Create     http.HandlerFunc
	List       http.HandlerFunc
	GetByID    http.HandlerFunc
	Update     http.HandlerFunc
	Patch      http.HandlerFunc
	Delete     http.HandlerFunc
	Middleware func(http.Handler) http.Handler
}

// registerCRUD registers standard CRUD routes for a resource base path, applying mw if non-nil.
func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	wrap := func(h http.HandlerFunc) http.Handler {
		if cfg.Middleware != nil {
			return cfg.Middleware(h)
		}
		return h
	}
	mux.Handle("POST "+cfg.Base, wrap(cfg.Create))
	mux.Handle("GET "+cfg.Base, wrap(cfg.List))
	mux.Handle("GET "+cfg.Base+"/{id}", wrap(cfg.GetByID))
	mux.Handle("PUT "+cfg.Base+"/{id}", wrap(cfg.Update))
	if cfg.Patch != nil {
		mux.Handle("PATCH "+cfg.Base+"/{id}", wrap(cfg.Patch))
	}
	mux.Handle("DELETE "+cfg.Base+"/{id}", wrap(cfg.Delete))
}

// notFoundHandler answers unknown routes with the JSON error shape instead of
// the mux's plain-text 404/405.
type notFoundHandler struct {
	mux *http.ServeMux
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, pattern := h.mux.Handler(r)
	if pattern != "" {
		// ServeHTTP, not handler: path values are only set by the mux itself.
		h.mux.ServeHTTP(w, r)
		return
	}

	// The mux's own handler distinguishes 404 from 405; capture which one it is.
	sniff := &statusSniffer{header: make(http.Header)}
	handler.ServeHTTP(sniff, r)
	switch sniff.status {
	case http.StatusMethodNotAllowed:
		if allow := sniff.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		WriteJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: ErrCodeMethodNotFound, Message: "méthode non autorisée"})
	case http.StatusNotFound:
		WriteJSON(w, http.StatusNotFound, ErrorBody{Error: ErrCodeRouteNotFound, Message: "ressource introuvable"})
	default:
		// Redirects (trailing slash, path cleaning) go through unchanged.
		handler.ServeHTTP(w, r)
	}
}

// statusSniffer records the status and headers a handler would write.
type statusSniffer struct {
	header http.Header
	status int
}

func (p *statusSniffer) Header() http.Header { return p.header }

func (p *statusSniffer) WriteHeader(code int) {
	if p.status == 0 {
		p.status = code
	}
}

func (p *statusSniffer) Write(b []byte) (int, error) {
	if p.status == 0 {
		p.status = http.StatusOK
	}
	return len(b), nil
}
