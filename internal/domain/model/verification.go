//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// VerificationKeyPrefix is the case-sensitive prefix printed on ticket QR codes.
const VerificationKeyPrefix = "VV"

var verificationKeyPattern = regexp.MustCompile(`^VV-(\d+)-(\d+)-(\d+)$`)

// VerificationKey identifies a ticket inside an order of an event.
type VerificationKey struct {
	EventID  int64 `json:"eventId"`
	OrderID  int64 `json:"orderId"`
	TicketID int64 `json:"ticketId"`
}

// ParseVerificationKey parses "VV-{eventId}-{orderId}-{ticketId}".
// Surrounding whitespace is ignored; every component must be a positive integer.
func ParseVerificationKey(raw string) (VerificationKey, bool) {
	m := verificationKeyPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return VerificationKey{}, false
	}
	var ids [3]int64
	for i := range ids {
		id, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil || id <= 0 {
			return VerificationKey{}, false
		}
		ids[i] = id
	}
	return VerificationKey{EventID: ids[0], OrderID: ids[1], TicketID: ids[2]}, true
}

// String renders the key in its printed form.
func (k VerificationKey) String() string {
	return fmt.Sprintf("%s-%d-%d-%d", VerificationKeyPrefix, k.EventID, k.OrderID, k.TicketID)
}

// TicketSummary echoes the verified ticket.
type TicketSummary struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"orderId"`
	EventID  int64  `json:"eventId"`
	UserID   int64  `json:"userId"`
	Category string `json:"category,omitempty"`
}

// EventSummary echoes the event a ticket belongs to.
type EventSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Date   string `json:"date,omitempty"`
	Status string `json:"status,omitempty"`
}

// UserSummary echoes the ticket holder.
type UserSummary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// OrderSummary echoes the order holding the ticket.
type OrderSummary struct {
	ID     int64  `json:"id"`
	Status string `json:"status,omitempty"`
}

// TicketVerificationResult is built fresh for each verification attempt.
type TicketVerificationResult struct {
	IsValid bool           `json:"isValid"`
	Ticket  *TicketSummary `json:"ticket,omitempty"`
	Event   *EventSummary  `json:"event,omitempty"`
	User    *UserSummary   `json:"user,omitempty"`
	Order   *OrderSummary  `json:"order,omitempty"`
	Error   string         `json:"error,omitempty"`
	// Step names the pipeline step that rejected the key. Empty when valid.
	Step string `json:"step,omitempty"`
}

// InvalidResult builds a failed verification result.
func InvalidResult(step, message string) TicketVerificationResult {
	return TicketVerificationResult{IsValid: false, Error: message, Step: step}
}
