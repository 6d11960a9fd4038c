//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vv-events/dashboard/internal/validation"
)

// ResourceKind names a platform collection managed from the dashboard.
type ResourceKind string

const (
	ResourceEvents      ResourceKind = "events"
	ResourceCities      ResourceKind = "cities"
	ResourcePlaces      ResourceKind = "places"
	ResourceCategories  ResourceKind = "categories"
	ResourceUsers       ResourceKind = "users"
	ResourceInvitations ResourceKind = "invitations"
	ResourceReports     ResourceKind = "reports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// FieldRule validates one field of a resource payload.
type FieldRule struct {
	Field      string
	Validators []validation.Validator
	// Required rules run on create even when the field is absent.
	Required bool
}

// ResourceSpec describes the validation rules of a resource kind.
type ResourceSpec struct {
	Kind  ResourceKind
	Label string
	Rules []FieldRule
}

var roleOptions = []string{"admin", "organizer", "user"}

var resourceSpecs = map[ResourceKind]ResourceSpec{
	ResourceEvents: {Kind: ResourceEvents, Label: "Événement", Rules: []FieldRule{
		{Field: "name", Validators: []validation.Validator{validation.Required("Nom", 255)}, Required: true},
		{Field: "description", Validators: []validation.Validator{validation.Optional("Description", 5000)}},
		{Field: "date", Validators: []validation.Validator{validation.Required("Date", 64), validation.Date("Date")}, Required: true},
		{Field: "capacity", Validators: []validation.Validator{validation.IntRange("Capacité", 1, 1_000_000)}},
		{Field: "price", Validators: []validation.Validator{validation.Decimal("Prix")}},
		{Field: "imageUrl", Validators: []validation.Validator{validation.HTTPURL("Image")}},
	}},
	ResourceCities: {Kind: ResourceCities, Label: "Ville", Rules: []FieldRule{
		{Field: "name", Validators: []validation.Validator{validation.Required("Nom", 120)}, Required: true},
		{Field: "postalCode", Validators: []validation.Validator{validation.Optional("Code postal", 10)}},
	}},
	ResourcePlaces: {Kind: ResourcePlaces, Label: "Lieu", Rules: []FieldRule{
		{Field: "name", Validators: []validation.Validator{validation.Required("Nom", 255)}, Required: true},
		{Field: "address", Validators: []validation.Validator{validation.Required("Adresse", 255)}, Required: true},
		{Field: "capacity", Validators: []validation.Validator{validation.IntRange("Capacité", 1, 1_000_000)}},
	}},
	ResourceCategories: {Kind: ResourceCategories, Label: "Catégorie", Rules: []FieldRule{
		{Field: "name", Validators: []validation.Validator{validation.Required("Nom", 120)}, Required: true},
	}},
	ResourceUsers: {Kind: ResourceUsers, Label: "Utilisateur", Rules: []FieldRule{
		{Field: "email", Validators: []validation.Validator{validation.Required("Email", 255), validation.Email("Email")}, Required: true},
		{Field: "firstName", Validators: []validation.Validator{validation.Optional("Prénom", 120)}},
		{Field: "lastName", Validators: []validation.Validator{validation.Optional("Nom", 120)}},
		{Field: "pseudo", Validators: []validation.Validator{validation.Optional("Pseudo", 60)}},
		{Field: "role", Validators: []validation.Validator{validation.OneOf("Rôle", roleOptions)}},
		{Field: "imageUrl", Validators: []validation.Validator{validation.HTTPURL("Image")}},
	}},
	ResourceInvitations: {Kind: ResourceInvitations, Label: "Invitation", Rules: []FieldRule{
		{Field: "email", Validators: []validation.Validator{validation.Required("Email", 255), validation.Email("Email")}, Required: true},
		{Field: "message", Validators: []validation.Validator{validation.Optional("Message", 2000)}},
	}},
	ResourceReports: {Kind: ResourceReports, Label: "Signalement", Rules: []FieldRule{
		{Field: "reason", Validators: []validation.Validator{validation.Required("Motif", 500)}, Required: true},
		{Field: "status", Validators: []validation.Validator{validation.OneOf("Statut", []string{"pending", "resolved", "rejected"})}},
	}},
}

// ParseResourceKind normalizes a collection name and reports whether it is managed.
func ParseResourceKind(value string) (ResourceKind, bool) {
	kind := ResourceKind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := resourceSpecs[kind]
	return kind, ok
}

// ResourceKinds returns every managed collection in a stable order.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{
		ResourceEvents, ResourceCities, ResourcePlaces, ResourceCategories,
		ResourceUsers, ResourceInvitations, ResourceReports,
	}
}

// SpecFor returns the validation rules for kind.
func SpecFor(kind ResourceKind) (ResourceSpec, bool) {
	s, ok := resourceSpecs[kind]
	return s, ok
}

// Validate checks a payload. Partial updates only validate the fields present.
// It returns field -> message for every failing field and the first failing field.
func (s ResourceSpec) Validate(payload map[string]any, partial bool) (map[string]string, string) {
	fv := validation.New()
	for _, rule := range s.Rules {
		raw, present := payload[rule.Field]
		if partial && !present {
			continue
		}
		if !partial && !present && !rule.Required {
			continue
		}
		fv.Validate(rule.Field, fieldString(raw), rule.Validators...)
	}
	field, _ := fv.First()
	return fv.Errors(), field
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ListOptions controls paging for catalog listings. Page is zero-based.
type ListOptions struct {
	Page int
	Size int
	Sort string
}

// Normalize clamps paging values; fallbackSize applies when Size is unset.
func (o ListOptions) Normalize(fallbackSize int) ListOptions {
	if o.Page < 0 {
		o.Page = 0
	}
	if fallbackSize <= 0 {
		fallbackSize = defaultPageSize
	}
	if o.Size <= 0 {
		o.Size = fallbackSize
	}
	if o.Size > maxPageSize {
		o.Size = maxPageSize
	}
	o.Sort = strings.TrimSpace(o.Sort)
	return o
}

// Resource is a single platform resource kept as raw JSON fields.
type Resource map[string]any

// SelfHref returns the resource's self link, if any.
func (r Resource) SelfHref() string {
	links, ok := r["_links"].(map[string]any)
	if !ok {
		return ""
	}
	self, ok := links[RelSelf].(map[string]any)
	if !ok {
		return ""
	}
	href, _ := self["href"].(string)
	return strings.TrimSpace(href)
}

// ResourcePage is one page of a collection.
type ResourcePage struct {
	Items []Resource `json:"items"`
	Page  Page       `json:"page"`
}
