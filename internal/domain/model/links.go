//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Link relation names used by the platform API.
const (
	RelSelf         = "self"
	RelEvents       = "events"
	RelEvent        = "event"
	RelUser         = "user"
	RelUsers        = "users"
	RelInvitations  = "invitations"
	RelParticipants = "participants"
	RelTickets      = "tickets"
)

// Link is a single HAL link object.
type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

// Links is the HAL `_links` object keyed by relation name.
type Links map[string]Link

// UnmarshalJSON accepts both `"rel": {...}` and `"rel": [{...}]`; for arrays the first link wins.
func (l *Links) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Links, len(raw))
	for rel, msg := range raw {
		var single Link
		if err := json.Unmarshal(msg, &single); err == nil {
			out[rel] = single
			continue
		}
		var many []Link
		if err := json.Unmarshal(msg, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			out[rel] = many[0]
		}
	}
	*l = out
	return nil
}

// Href returns the href for rel with any URI template suffix removed.
func (l Links) Href(rel string) string {
	link, ok := l[rel]
	if !ok {
		return ""
	}
	href := strings.TrimSpace(link.Href)
	if i := strings.Index(href, "{"); i >= 0 {
		href = href[:i]
	}
	return href
}

// Has reports whether rel is present with a non-empty href.
func (l Links) Has(rel string) bool { return l.Href(rel) != "" }

// TrailingID extracts the numeric id at the end of a resource href such as
// "http://api/events/12" or "/orders/7?projection=full".
func TrailingID(href string) (int64, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return 0, false
	}
	if u, err := url.Parse(href); err == nil {
		href = u.Path
	}
	href = strings.TrimRight(href, "/")
	seg := href[strings.LastIndex(href, "/")+1:]
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
