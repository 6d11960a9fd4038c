package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// PlatformUser is a user fixture for FakePlatform.
type PlatformUser struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Role      string
	Password  string
	Token     string
	// EventIDs are the events this user organizes.
	EventIDs []int64
}

// PlatformEvent is an event fixture.
type PlatformEvent struct {
	ID             int64
	Name           string
	Date           string
	Status         string
	ParticipantIDs []int64
}

// PlatformOrder is an order fixture.
type PlatformOrder struct {
	ID        int64
	EventID   int64
	UserID    int64
	Status    string
	TicketIDs []int64
}

// FakePlatform is an in-process HAL API used by adapter, service and handler tests.
// Routes live under /api like the real platform.
type FakePlatform struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[int64]PlatformUser
	events   map[int64]PlatformEvent
	orders   map[int64]PlatformOrder
	catalog  map[string][]map[string]any
	nextID   int64
	meStatus int
	meDelay  time.Duration

	requests atomic.Int64
	meCalls  atomic.Int64
}

// NewFakePlatform starts a fake platform API and closes it when the test ends.
func NewFakePlatform(t *testing.T) *FakePlatform {
	t.Helper()
	p := &FakePlatform{
		users:   make(map[int64]PlatformUser),
		events:  make(map[int64]PlatformEvent),
		orders:  make(map[int64]PlatformOrder),
		catalog: make(map[string][]map[string]any),
		nextID:  1000,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me", p.handleMe)
	mux.HandleFunc("POST /api/auth/authenticate", p.handleAuthenticate)
	mux.HandleFunc("GET /api/users/{id}", p.handleUser)
	mux.HandleFunc("GET /api/users/{id}/events", p.handleUserEvents)
	mux.HandleFunc("GET /api/events/{id}", p.handleEvent)
	mux.HandleFunc("GET /api/events/{id}/participants", p.handleParticipants)
	mux.HandleFunc("GET /api/orders/{id}", p.handleOrder)
	mux.HandleFunc("GET /api/{kind}", p.handleList)
	mux.HandleFunc("GET /api/{kind}/{id}", p.handleGet)
	mux.HandleFunc("POST /api/{kind}", p.handleCreate)
	mux.HandleFunc("PUT /api/{kind}/{id}", p.handleUpdate)
	mux.HandleFunc("PATCH /api/{kind}/{id}", p.handleUpdate)
	mux.HandleFunc("DELETE /api/{kind}/{id}", p.handleDelete)

	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Server.Close)
	return p
}

// BaseURL is the API root, e.g. http://127.0.0.1:1234/api.
func (p *FakePlatform) BaseURL() string { return p.Server.URL + "/api" }

// Requests returns how many requests the fake has served.
func (p *FakePlatform) Requests() int64 { return p.requests.Load() }

// MeCalls returns how many identity requests the fake has served.
func (p *FakePlatform) MeCalls() int64 { return p.meCalls.Load() }

// AddUser registers a user fixture.
func (p *FakePlatform) AddUser(u PlatformUser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[u.ID] = u
}

// SetToken changes the token the platform issues and accepts for user id.
func (p *FakePlatform) SetToken(id int64, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.users[id]; ok {
		u.Token = token
		p.users[id] = u
	}
}

// AddEvent registers an event fixture.
func (p *FakePlatform) AddEvent(e PlatformEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[e.ID] = e
}

// AddOrder registers an order fixture.
func (p *FakePlatform) AddOrder(o PlatformOrder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders[o.ID] = o
}

// SetMeStatus forces GET /users/me to answer with status (0 restores normal behavior).
func (p *FakePlatform) SetMeStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meStatus = status
}

// SetMeDelay delays GET /users/me.
func (p *FakePlatform) SetMeDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meDelay = d
}

// SeedValidTicket installs the canonical VV-1-1-1 fixture: admin 1 (token
// "admin-token"), organizer 2 owning event 1 (token "organizer-token"),
// buyer 3 registered to event 1, order 1 holding ticket 1.
func (p *FakePlatform) SeedValidTicket() {
	p.AddUser(PlatformUser{ID: 1, FirstName: "Ada", LastName: "Admin", Email: "admin@vv.test", Role: "ADMIN", Password: "secret", Token: "admin-token"})
	p.AddUser(PlatformUser{ID: 2, FirstName: "Olga", LastName: "Orga", Email: "orga@vv.test", Role: "ORGANIZER", Password: "secret", Token: "organizer-token", EventIDs: []int64{1}})
	p.AddUser(PlatformUser{ID: 3, FirstName: "Bob", LastName: "Buyer", Email: "bob@vv.test", Role: "USER", Password: "secret", Token: "user-token"})
	p.AddEvent(PlatformEvent{ID: 1, Name: "Concert", Date: "2025-06-21T20:00:00", Status: "ACTIVE", ParticipantIDs: []int64{3}})
	p.AddOrder(PlatformOrder{ID: 1, EventID: 1, UserID: 3, Status: "PAID", TicketIDs: []int64{1, 2}})
}

func (p *FakePlatform) href(parts ...any) string {
	var b strings.Builder
	b.WriteString(p.BaseURL())
	for _, part := range parts {
		b.WriteString("/")
		switch v := part.(type) {
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case string:
			b.WriteString(v)
		}
	}
	return b.String()
}

func link(href string) map[string]string { return map[string]string{"href": href} }

func (p *FakePlatform) userJSON(u PlatformUser) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"role":      u.Role,
		"_links": map[string]any{
			"self":   link(p.href("users", u.ID)),
			"events": link(p.href("users", u.ID, "events")),
		},
	}
}

func (p *FakePlatform) eventJSON(e PlatformEvent) map[string]any {
	return map[string]any{
		"id":     e.ID,
		"name":   e.Name,
		"date":   e.Date,
		"status": e.Status,
		"_links": map[string]any{
			"self":         link(p.href("events", e.ID)),
			"participants": link(p.href("events", e.ID, "participants")),
		},
	}
}

func (p *FakePlatform) orderJSON(o PlatformOrder) map[string]any {
	tickets := make([]map[string]any, 0, len(o.TicketIDs))
	for _, id := range o.TicketIDs {
		tickets = append(tickets, map[string]any{"id": id, "category": "STANDARD"})
	}
	return map[string]any{
		"id":      o.ID,
		"status":  o.Status,
		"tickets": tickets,
		"_links": map[string]any{
			"self":  link(p.href("orders", o.ID)),
			"event": link(p.href("events", o.EventID)),
			"user":  link(p.href("users", o.UserID)),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/hal+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (p *FakePlatform) bearer(r *http.Request) (PlatformUser, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return PlatformUser{}, false
	}
	for _, u := range p.users {
		if u.Token == token {
			return u, true
		}
	}
	return PlatformUser{}, false
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (p *FakePlatform) handleMe(w http.ResponseWriter, r *http.Request) {
	p.meCalls.Add(1)
	p.mu.Lock()
	status, delay := p.meStatus, p.meDelay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}

	p.mu.Lock()
	u, ok := p.bearer(r)
	p.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, p.userJSON(u))
}

func (p *FakePlatform) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if strings.EqualFold(u.Email, body.Email) && u.Password == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{"token": u.Token, "user": p.userJSON(u)})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "bad credentials"})
}

func (p *FakePlatform) handleUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, p.userJSON(u))
}

func (p *FakePlatform) handleUserEvents(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	events := make([]map[string]any, 0, len(u.EventIDs))
	for _, eid := range u.EventIDs {
		if e, ok := p.events[eid]; ok {
			events = append(events, p.eventJSON(e))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"_embedded": map[string]any{"events": events}})
}

func (p *FakePlatform) handleEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.events[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, p.eventJSON(e))
}

func (p *FakePlatform) handleParticipants(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.events[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	users := make([]map[string]any, 0, len(e.ParticipantIDs))
	for _, uid := range e.ParticipantIDs {
		if u, ok := p.users[uid]; ok {
			users = append(users, p.userJSON(u))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"_embedded": map[string]any{"users": users}})
}

func (p *FakePlatform) handleOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.orders[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, p.orderJSON(o))
}

func (p *FakePlatform) handleList(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}

	p.mu.Lock()
	items := p.catalog[kind]
	p.mu.Unlock()

	start := min(page*size, len(items))
	end := min(start+size, len(items))
	totalPages := (len(items) + size - 1) / size
	writeJSON(w, http.StatusOK, map[string]any{
		"_embedded": map[string]any{kind: items[start:end]},
		"page": map[string]any{
			"size":          size,
			"totalElements": len(items),
			"totalPages":    totalPages,
			"number":        page,
		},
	})
}

func (p *FakePlatform) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	body["id"] = p.nextID
	body["_links"] = map[string]any{"self": link(p.href(kind, p.nextID))}
	p.catalog[kind] = append(p.catalog[kind], body)
	writeJSON(w, http.StatusCreated, body)
}

func (p *FakePlatform) findResource(kind string, id int64) int {
	for i, item := range p.catalog[kind] {
		if v, ok := item["id"].(int64); ok && v == id {
			return i
		}
	}
	return -1
}

func (p *FakePlatform) handleGet(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.findResource(kind, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, p.catalog[kind][i])
}

func (p *FakePlatform) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	id, _ := pathID(r)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.findResource(kind, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	item := p.catalog[kind][i]
	if r.Method == http.MethodPut {
		item = map[string]any{"id": id, "_links": item["_links"]}
	}
	for k, v := range body {
		if k == "id" || k == "_links" {
			continue
		}
		item[k] = v
	}
	p.catalog[kind][i] = item
	writeJSON(w, http.StatusOK, item)
}

func (p *FakePlatform) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	id, _ := pathID(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.findResource(kind, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	p.catalog[kind] = append(p.catalog[kind][:i], p.catalog[kind][i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
