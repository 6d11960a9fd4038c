package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/observability/metrics"
	"github.com/vv-events/dashboard/internal/observability/statsd"
	"github.com/vv-events/dashboard/internal/ports"
)

// Verification step names, in pipeline order.
const (
	StepParseKey          = "parse_key"
	StepFetchEvent        = "fetch_event"
	StepOrganizerScope    = "organizer_scope"
	StepFetchOrder        = "fetch_order"
	StepOrderEventMatch   = "order_event_match"
	StepFindTicket        = "find_ticket"
	StepFetchOrderUser    = "fetch_order_user"
	StepParticipantCheck  = "participant_check"
	StepEventNotCancelled = "event_not_cancelled"
	StepOrderNotCancelled = "order_not_cancelled"
	StepBuildResult       = "build_result"
)

// Verification failure messages shown on the scanner page.
const (
	MsgInvalidKeyFormat    = "Format de clé invalide (attendu : VV-{eventId}-{orderId}-{ticketId})"
	MsgEventNotFound       = "Événement non trouvé"
	MsgNotOwnEvent         = "Vous ne pouvez vérifier que les billets de vos propres événements"
	MsgOrderNotFound       = "Commande non trouvée"
	MsgOrderEventMismatch  = "La commande n'appartient pas à cet événement"
	MsgTicketNotInOrder    = "Billet non trouvé dans la commande"
	MsgUserNotFound        = "Utilisateur non trouvé"
	MsgUserNotRegistered   = "L'utilisateur n'est pas inscrit à cet événement"
	MsgEventCancelled      = "L'événement a été annulé"
	MsgOrderCancelled      = "La commande a été annulée"
	MsgVerificationError   = "Erreur lors de la vérification"
	MsgPlatformUnreachable = "Plateforme injoignable"
)

// VerificationFailure is a step's business-rule rejection.
type VerificationFailure struct {
	Step    string
	Message string
}

func (f *VerificationFailure) Error() string { return f.Step + ": " + f.Message }

func fail(step, msg string) error { return &VerificationFailure{Step: step, Message: msg} }

// fetchFailure maps a platform error to a step failure: 404 gets the
// resource-specific message, anything else failureMessage.
func fetchFailure(step string, err error, notFound string) error {
	if apperrors.IsNotFound(err) {
		return fail(step, notFound)
	}
	return fail(step, failureMessage(err))
}

// failureMessage is what the scanner page shows for an error that is not a
// business rejection. Platform answers show their status, never their body;
// transport failures never leak the request line.
func failureMessage(err error) string {
	var sc interface{ HTTPStatus() int }
	if errors.As(err, &sc) && sc.HTTPStatus() > 0 {
		return fmt.Sprintf("Erreur HTTP: %d", sc.HTTPStatus())
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeUnavailable, apperrors.ErrCodeTimeout:
		return MsgPlatformUnreachable
	case "", apperrors.ErrCodeInternal, apperrors.ErrCodeCanceled:
		return MsgVerificationError
	}
	if msg := apperrors.GetMessage(err); msg != "" {
		return msg
	}
	return MsgVerificationError
}

// VerifyInput is one verification request. Caller is the signed-in user and
// scopes organizers to their own events.
type VerifyInput struct {
	Key    string
	Token  string
	Caller *model.User
}

// TicketVerifierOptions groups dependencies for TicketVerifier.
type TicketVerifierOptions struct {
	API     ports.VerificationAPI
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// TicketVerifier runs the ordered verification pipeline. It keeps no state
// between calls.
type TicketVerifier struct {
	api     ports.VerificationAPI
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewTicketVerifier constructs a TicketVerifier.
func NewTicketVerifier(opts TicketVerifierOptions) (*TicketVerifier, error) {
	if opts.API == nil {
		return nil, errors.New("verification API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketVerifier{
		api:     opts.API,
		metrics: opts.Metrics,
		logger:  logger.With("component", "ticket_verifier"),
	}, nil
}

// verification carries what each step learned for the steps after it.
type verification struct {
	in      VerifyInput
	key     model.VerificationKey
	eventID int64
	event   *model.Event
	order   *model.Order
	ticket  model.Ticket
	buyer   *model.User
	result  model.TicketVerificationResult
}

type verificationStep struct {
	name string
	run  func(ctx context.Context, v *verification) error
}

func (t *TicketVerifier) steps() []verificationStep {
	return []verificationStep{
		{StepParseKey, t.parseKey},
		{StepFetchEvent, t.fetchEvent},
		{StepOrganizerScope, t.organizerScope},
		{StepFetchOrder, t.fetchOrder},
		{StepOrderEventMatch, t.orderEventMatch},
		{StepFindTicket, t.findTicket},
		{StepFetchOrderUser, t.fetchOrderUser},
		{StepParticipantCheck, t.participantCheck},
		{StepEventNotCancelled, t.eventNotCancelled},
		{StepOrderNotCancelled, t.orderNotCancelled},
		{StepBuildResult, t.buildResult},
	}
}

// Verify runs every step in order and stops at the first failure. It never
// returns an error: failures, unexpected errors and panics all become an
// invalid result.
func (t *TicketVerifier) Verify(ctx context.Context, in VerifyInput) (res model.TicketVerificationResult) {
	start := time.Now()
	step := ""
	defer func() {
		if r := recover(); r != nil {
			t.logger.ErrorContext(ctx, "ticket verification panicked", "step", step, "panic", r)
			res = model.InvalidResult(step, MsgVerificationError)
		}
		metrics.EmitVerification(t.metrics, metrics.VerificationMetric{
			Valid:    res.IsValid,
			Step:     res.Step,
			Duration: time.Since(start),
		})
	}()

	v := &verification{in: in}
	for _, s := range t.steps() {
		step = s.name
		if err := s.run(ctx, v); err != nil {
			return t.invalid(ctx, s.name, err)
		}
	}
	return v.result
}

func (t *TicketVerifier) invalid(ctx context.Context, step string, err error) model.TicketVerificationResult {
	var vf *VerificationFailure
	if errors.As(err, &vf) {
		t.logger.InfoContext(ctx, "ticket rejected", "step", vf.Step, "reason", vf.Message)
		return model.InvalidResult(vf.Step, vf.Message)
	}
	t.logger.WarnContext(ctx, "ticket verification failed", "step", step, "error", err)
	return model.InvalidResult(step, failureMessage(err))
}

func (t *TicketVerifier) parseKey(_ context.Context, v *verification) error {
	key, ok := model.ParseVerificationKey(v.in.Key)
	if !ok {
		return fail(StepParseKey, MsgInvalidKeyFormat)
	}
	v.key = key
	return nil
}

func (t *TicketVerifier) fetchEvent(ctx context.Context, v *verification) error {
	event, err := t.api.GetEvent(ctx, v.in.Token, v.key.EventID)
	if err != nil {
		return fetchFailure(StepFetchEvent, err, MsgEventNotFound)
	}
	v.event = event
	v.eventID = event.ResolvedID()
	if v.eventID == 0 {
		v.eventID = v.key.EventID
	}
	return nil
}

// organizerScope applies to the organizer role only; admins verify any event.
func (t *TicketVerifier) organizerScope(ctx context.Context, v *verification) error {
	caller := v.in.Caller
	if domainauth.RoleOf(caller) != domainauth.RoleOrganizer {
		return nil
	}

	href := caller.Links.Href(model.RelEvents)
	if href == "" {
		profile, err := t.api.GetUser(ctx, v.in.Token, caller.ResolvedID())
		if err != nil {
			return fmt.Errorf("load organizer profile: %w", err)
		}
		href = profile.Links.Href(model.RelEvents)
	}
	if href == "" {
		return fail(StepOrganizerScope, MsgNotOwnEvent)
	}

	events, err := t.api.FollowEvents(ctx, v.in.Token, href)
	if err != nil {
		return fmt.Errorf("load organizer events: %w", err)
	}
	for _, e := range events {
		if e.ResolvedID() == v.eventID {
			return nil
		}
	}
	return fail(StepOrganizerScope, MsgNotOwnEvent)
}

func (t *TicketVerifier) fetchOrder(ctx context.Context, v *verification) error {
	order, err := t.api.GetOrder(ctx, v.in.Token, v.key.OrderID)
	if err != nil {
		return fetchFailure(StepFetchOrder, err, MsgOrderNotFound)
	}
	v.order = order
	return nil
}

func (t *TicketVerifier) orderEventMatch(_ context.Context, v *verification) error {
	linked, ok := v.order.LinkedEventID()
	if !ok || linked != v.eventID {
		return fail(StepOrderEventMatch, MsgOrderEventMismatch)
	}
	return nil
}

func (t *TicketVerifier) findTicket(_ context.Context, v *verification) error {
	ticket, ok := v.order.FindTicket(v.key.TicketID)
	if !ok {
		return fail(StepFindTicket, MsgTicketNotInOrder)
	}
	v.ticket = ticket
	return nil
}

func (t *TicketVerifier) fetchOrderUser(ctx context.Context, v *verification) error {
	var (
		buyer *model.User
		err   error
	)
	switch {
	case v.order.UserHref() != "":
		buyer, err = t.api.FollowUser(ctx, v.in.Token, v.order.UserHref())
	case v.order.UserID != nil:
		buyer, err = t.api.GetUser(ctx, v.in.Token, *v.order.UserID)
	default:
		return fail(StepFetchOrderUser, MsgUserNotFound)
	}
	if err != nil {
		return fetchFailure(StepFetchOrderUser, err, MsgUserNotFound)
	}
	v.buyer = buyer
	return nil
}

func (t *TicketVerifier) participantCheck(ctx context.Context, v *verification) error {
	participants, err := t.api.EventParticipants(ctx, v.in.Token, v.eventID)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	buyerID := v.buyer.ResolvedID()
	for _, p := range participants {
		if buyerID != 0 && p.ResolvedID() == buyerID {
			return nil
		}
	}
	return fail(StepParticipantCheck, MsgUserNotRegistered)
}

func (t *TicketVerifier) eventNotCancelled(_ context.Context, v *verification) error {
	if v.event.IsCancelled() {
		return fail(StepEventNotCancelled, MsgEventCancelled)
	}
	return nil
}

func (t *TicketVerifier) orderNotCancelled(_ context.Context, v *verification) error {
	if v.order.IsCancelled() {
		return fail(StepOrderNotCancelled, MsgOrderCancelled)
	}
	return nil
}

func (t *TicketVerifier) buildResult(_ context.Context, v *verification) error {
	orderID := v.order.ResolvedID()
	if orderID == 0 {
		orderID = v.key.OrderID
	}
	ticketID := v.ticket.ResolvedID()
	if ticketID == 0 {
		ticketID = v.key.TicketID
	}

	event := v.event.Summary()
	event.ID = v.eventID
	order := v.order.Summary()
	order.ID = orderID

	v.result = model.TicketVerificationResult{
		IsValid: true,
		Ticket: &model.TicketSummary{
			ID:       ticketID,
			OrderID:  orderID,
			EventID:  v.eventID,
			UserID:   v.buyer.ResolvedID(),
			Category: v.ticket.Category,
		},
		Event: event,
		User:  v.buyer.Summary(),
		Order: order,
	}
	return nil
}
