//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
)

// Platform status values. Compared case-insensitively; both spellings of
// "cancelled" appear in platform data.
const (
	StatusCancelled = "cancelled"
	StatusCanceled  = "canceled"
)

// IsCancelledStatus reports whether status marks a cancelled event or order.
func IsCancelledStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == StatusCancelled || s == StatusCanceled
}

// resolveID prefers the explicit id and falls back to the self link.
func resolveID(id int64, links Links) int64 {
	if id > 0 {
		return id
	}
	if v, ok := TrailingID(links.Href(RelSelf)); ok {
		return v
	}
	return 0
}

// User is the platform's user representation. Role is the only authorization signal.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Pseudo    string `json:"pseudo,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Links     Links  `json:"_links,omitempty"`
}

// ResolvedID returns the user id, falling back to the self link.
func (u User) ResolvedID() int64 { return resolveID(u.ID, u.Links) }

// DisplayName is "First Last", falling back to the pseudo and then the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	switch {
	case name != "":
		return name
	case strings.TrimSpace(u.Pseudo) != "":
		return strings.TrimSpace(u.Pseudo)
	default:
		return u.Email
	}
}

// Summary converts the user into the verification echo.
func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ResolvedID(), DisplayName: u.DisplayName(), Email: u.Email}
}

// Event is the platform's event representation.
type Event struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	Status    string `json:"status,omitempty"`
	Links     Links  `json:"_links,omitempty"`
}

// ResolvedID returns the event id, falling back to the self link.
func (e Event) ResolvedID() int64 { return resolveID(e.ID, e.Links) }

// When returns the event date, whichever field the platform filled.
func (e Event) When() string {
	if e.Date != "" {
		return e.Date
	}
	return e.StartDate
}

// IsCancelled reports whether the event has been cancelled.
func (e Event) IsCancelled() bool { return IsCancelledStatus(e.Status) }

// Summary converts the event into the verification echo.
func (e Event) Summary() *EventSummary {
	return &EventSummary{ID: e.ResolvedID(), Name: e.Name, Date: e.When(), Status: e.Status}
}

// Ticket is a single admission inside an order.
type Ticket struct {
	ID       int64  `json:"id"`
	Category string `json:"category,omitempty"`
	Links    Links  `json:"_links,omitempty"`
}

// ResolvedID returns the ticket id, falling back to the self link.
func (t Ticket) ResolvedID() int64 { return resolveID(t.ID, t.Links) }

// OrderEmbedded carries the embedded resources of an order.
type OrderEmbedded struct {
	Tickets []Ticket `json:"tickets,omitempty"`
	Event   *Event   `json:"event,omitempty"`
}

// Order is a purchase of one or more tickets for a single event.
type Order struct {
	ID       int64          `json:"id"`
	Status   string         `json:"status,omitempty"`
	EventID  *int64         `json:"eventId,omitempty"`
	UserID   *int64         `json:"userId,omitempty"`
	Tickets  []Ticket       `json:"tickets,omitempty"`
	Embedded *OrderEmbedded `json:"_embedded,omitempty"`
	Links    Links          `json:"_links,omitempty"`
}

// ResolvedID returns the order id, falling back to the self link.
func (o Order) ResolvedID() int64 { return resolveID(o.ID, o.Links) }

// IsCancelled reports whether the order has been cancelled.
func (o Order) IsCancelled() bool { return IsCancelledStatus(o.Status) }

// LinkedEventID returns the event the order belongs to: the explicit id, then
// the event link, then an embedded event.
func (o Order) LinkedEventID() (int64, bool) {
	if o.EventID != nil && *o.EventID > 0 {
		return *o.EventID, true
	}
	if id, ok := TrailingID(o.Links.Href(RelEvent)); ok {
		return id, true
	}
	if o.Embedded != nil && o.Embedded.Event != nil {
		if id := o.Embedded.Event.ResolvedID(); id > 0 {
			return id, true
		}
	}
	return 0, false
}

// AllTickets merges inline and embedded tickets.
func (o Order) AllTickets() []Ticket {
	if o.Embedded == nil || len(o.Embedded.Tickets) == 0 {
		return o.Tickets
	}
	out := make([]Ticket, 0, len(o.Tickets)+len(o.Embedded.Tickets))
	out = append(out, o.Tickets...)
	return append(out, o.Embedded.Tickets...)
}

// FindTicket looks up a ticket by id.
func (o Order) FindTicket(id int64) (Ticket, bool) {
	for _, t := range o.AllTickets() {
		if t.ResolvedID() == id {
			return t, true
		}
	}
	return Ticket{}, false
}

// UserHref returns the link to the user who placed the order.
func (o Order) UserHref() string {
	if href := o.Links.Href(RelUser); href != "" {
		return href
	}
	return o.Links.Href(RelUsers)
}

// Summary converts the order into the verification echo.
func (o Order) Summary() *OrderSummary {
	return &OrderSummary{ID: o.ResolvedID(), Status: o.Status}
}

// Page is the HAL paging envelope.
type Page struct {
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool { return p.Number+1 < p.TotalPages }
