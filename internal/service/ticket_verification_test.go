package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vv-events/dashboard/internal/adapters/platformapi"
	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/mocks"
	"github.com/vv-events/dashboard/internal/observability/statsd"
	"github.com/vv-events/dashboard/internal/testutil"
)

type verifierFixture struct {
	verifier *TicketVerifier
	platform *testutil.FakePlatform
	client   *platformapi.Client
	metrics  *statsd.Recorder
}

func newVerifierFixture(t *testing.T) *verifierFixture {
	t.Helper()
	p := testutil.NewFakePlatform(t)
	p.SeedValidTicket()

	client, err := platformapi.NewClient(platformapi.Config{BaseURL: p.BaseURL(), Timeout: 5 * time.Second})
	require.NoError(t, err)

	rec := &statsd.Recorder{}
	v, err := NewTicketVerifier(TicketVerifierOptions{API: client, Metrics: rec})
	require.NoError(t, err)
	return &verifierFixture{verifier: v, platform: p, client: client, metrics: rec}
}

func (f *verifierFixture) caller(t *testing.T, token string) *model.User {
	t.Helper()
	u, err := f.client.Me(context.Background(), token)
	require.NoError(t, err)
	return u
}

func (f *verifierFixture) verify(t *testing.T, token, key string) model.TicketVerificationResult {
	t.Helper()
	return f.verifier.Verify(context.Background(), VerifyInput{Key: key, Token: token, Caller: f.caller(t, token)})
}

func TestNewTicketVerifier_RequiresAPI(t *testing.T) {
	_, err := NewTicketVerifier(TicketVerifierOptions{})
	require.Error(t, err)
}

func TestVerify_ValidTicket(t *testing.T) {
	f := newVerifierFixture(t)

	res := f.verify(t, "admin-token", "VV-1-1-1")

	require.True(t, res.IsValid, res.Error)
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Step)
	require.NotNil(t, res.Ticket)
	assert.Equal(t, model.TicketSummary{ID: 1, OrderID: 1, EventID: 1, UserID: 3, Category: "STANDARD"}, *res.Ticket)
	require.NotNil(t, res.Event)
	assert.Equal(t, "Concert", res.Event.Name)
	assert.Equal(t, "ACTIVE", res.Event.Status)
	require.NotNil(t, res.User)
	assert.Equal(t, "Bob Buyer", res.User.DisplayName)
	require.NotNil(t, res.Order)
	assert.Equal(t, "PAID", res.Order.Status)

	verifies := f.metrics.Named("tickets.verify")
	require.Len(t, verifies, 1)
	assert.Equal(t, "success", verifies[0].Tags["result"])
}

func TestVerify_SecondTicketOfOrder(t *testing.T) {
	f := newVerifierFixture(t)
	res := f.verify(t, "admin-token", " VV-1-1-2 ")
	require.True(t, res.IsValid, res.Error)
	assert.Equal(t, int64(2), res.Ticket.ID)
}

func TestVerify_MalformedKeyMakesNoRequest(t *testing.T) {
	keys := []string{"", "VV-1-1", "vv-1-1-1", "VV-a-1-1", "VV-0-1-1", "VV-1-1-1-1", "XX-1-1-1", "VV--1-1-1", "not-a-key"}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockVerificationAPI(ctrl)
			v, err := NewTicketVerifier(TicketVerifierOptions{API: api})
			require.NoError(t, err)

			res := v.Verify(context.Background(), VerifyInput{Key: key, Token: "admin-token", Caller: adminUser()})

			assert.False(t, res.IsValid)
			assert.Equal(t, StepParseKey, res.Step)
			assert.Equal(t, MsgInvalidKeyFormat, res.Error)
		})
	}
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(p *testutil.FakePlatform)
		key     string
		step    string
		message string
	}{
		{
			name:    "unknown event",
			key:     "VV-99-1-1",
			step:    StepFetchEvent,
			message: MsgEventNotFound,
		},
		{
			name:    "unknown order",
			key:     "VV-1-99-1",
			step:    StepFetchOrder,
			message: MsgOrderNotFound,
		},
		{
			name: "order of another event",
			seed: func(p *testutil.FakePlatform) {
				p.AddEvent(testutil.PlatformEvent{ID: 2, Name: "Festival", Status: "ACTIVE", ParticipantIDs: []int64{3}})
				p.AddOrder(testutil.PlatformOrder{ID: 2, EventID: 2, UserID: 3, Status: "PAID", TicketIDs: []int64{3}})
			},
			key:     "VV-1-2-3",
			step:    StepOrderEventMatch,
			message: MsgOrderEventMismatch,
		},
		{
			name:    "ticket not in order",
			key:     "VV-1-1-9",
			step:    StepFindTicket,
			message: MsgTicketNotInOrder,
		},
		{
			name: "buyer missing",
			seed: func(p *testutil.FakePlatform) {
				p.AddOrder(testutil.PlatformOrder{ID: 3, EventID: 1, UserID: 99, Status: "PAID", TicketIDs: []int64{4}})
			},
			key:     "VV-1-3-4",
			step:    StepFetchOrderUser,
			message: MsgUserNotFound,
		},
		{
			name: "buyer not registered",
			seed: func(p *testutil.FakePlatform) {
				p.AddUser(testutil.PlatformUser{ID: 4, FirstName: "Nina", LastName: "Nope", Email: "nina@vv.test", Role: "USER"})
				p.AddOrder(testutil.PlatformOrder{ID: 4, EventID: 1, UserID: 4, Status: "PAID", TicketIDs: []int64{5}})
			},
			key:     "VV-1-4-5",
			step:    StepParticipantCheck,
			message: MsgUserNotRegistered,
		},
		{
			name: "event cancelled",
			seed: func(p *testutil.FakePlatform) {
				p.AddEvent(testutil.PlatformEvent{ID: 5, Name: "Annulé", Status: "CANCELLED", ParticipantIDs: []int64{3}})
				p.AddOrder(testutil.PlatformOrder{ID: 5, EventID: 5, UserID: 3, Status: "PAID", TicketIDs: []int64{6}})
			},
			key:     "VV-5-5-6",
			step:    StepEventNotCancelled,
			message: MsgEventCancelled,
		},
		{
			name: "order cancelled",
			seed: func(p *testutil.FakePlatform) {
				p.AddOrder(testutil.PlatformOrder{ID: 6, EventID: 1, UserID: 3, Status: "canceled", TicketIDs: []int64{7}})
			},
			key:     "VV-1-6-7",
			step:    StepOrderNotCancelled,
			message: MsgOrderCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifierFixture(t)
			if tt.seed != nil {
				tt.seed(f.platform)
			}

			res := f.verify(t, "admin-token", tt.key)

			assert.False(t, res.IsValid)
			assert.Equal(t, tt.step, res.Step)
			assert.Equal(t, tt.message, res.Error)
			assert.Nil(t, res.Ticket)

			verifies := f.metrics.Named("tickets.verify")
			require.Len(t, verifies, 1)
			assert.Equal(t, "invalid", verifies[0].Tags["result"])
			assert.Equal(t, tt.step, verifies[0].Tags["step"])
		})
	}
}

func TestVerify_OrganizerScope(t *testing.T) {
	t.Run("own event", func(t *testing.T) {
		f := newVerifierFixture(t)
		res := f.verify(t, "organizer-token", "VV-1-1-1")
		assert.True(t, res.IsValid, res.Error)
	})

	t.Run("someone else's event", func(t *testing.T) {
		f := newVerifierFixture(t)
		f.platform.AddEvent(testutil.PlatformEvent{ID: 7, Name: "Autre", Status: "ACTIVE", ParticipantIDs: []int64{3}})
		f.platform.AddOrder(testutil.PlatformOrder{ID: 7, EventID: 7, UserID: 3, Status: "PAID", TicketIDs: []int64{8}})

		res := f.verify(t, "organizer-token", "VV-7-7-8")

		assert.False(t, res.IsValid)
		assert.Equal(t, StepOrganizerScope, res.Step)
		assert.Equal(t, MsgNotOwnEvent, res.Error)
	})

	t.Run("admin is not scoped", func(t *testing.T) {
		f := newVerifierFixture(t)
		f.platform.AddEvent(testutil.PlatformEvent{ID: 7, Name: "Autre", Status: "ACTIVE", ParticipantIDs: []int64{3}})
		f.platform.AddOrder(testutil.PlatformOrder{ID: 7, EventID: 7, UserID: 3, Status: "PAID", TicketIDs: []int64{8}})

		res := f.verify(t, "admin-token", "VV-7-7-8")
		assert.True(t, res.IsValid, res.Error)
	})

	t.Run("caller without links is looked up", func(t *testing.T) {
		f := newVerifierFixture(t)
		caller := &model.User{ID: 2, Role: "organizer"}

		res := f.verifier.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "organizer-token", Caller: caller})
		assert.True(t, res.IsValid, res.Error)
	})
}

func TestVerify_UpstreamErrorShowsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockVerificationAPI(ctrl)
	upstream := apperrors.Wrap(&platformapi.StatusError{Status: 500}, apperrors.ErrCodeUpstream, "Erreur HTTP: 500")
	api.EXPECT().GetEvent(gomock.Any(), "tok", int64(1)).Return(nil, upstream)

	v, err := NewTicketVerifier(TicketVerifierOptions{API: api})
	require.NoError(t, err)

	res := v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

	assert.False(t, res.IsValid)
	assert.Equal(t, StepFetchEvent, res.Step)
	assert.Equal(t, "Erreur HTTP: 500", res.Error)
}

func TestVerify_PlatformBodyIsNotShown(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"message":"contrainte violée sur la table events"}`))
			}))
			t.Cleanup(srv.Close)

			client, err := platformapi.NewClient(platformapi.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})
			require.NoError(t, err)
			v, err := NewTicketVerifier(TicketVerifierOptions{API: client})
			require.NoError(t, err)

			res := v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

			assert.False(t, res.IsValid)
			assert.Equal(t, StepFetchEvent, res.Step)
			assert.Equal(t, fmt.Sprintf("Erreur HTTP: %d", status), res.Error)
		})
	}
}

func TestVerify_PlatformUnreachable(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	client, err := platformapi.NewClient(platformapi.Config{BaseURL: p.BaseURL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	p.Server.Close()

	v, err := NewTicketVerifier(TicketVerifierOptions{API: client})
	require.NoError(t, err)

	res := v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

	assert.False(t, res.IsValid)
	assert.Equal(t, StepFetchEvent, res.Step)
	assert.Equal(t, MsgPlatformUnreachable, res.Error)
	assert.NotContains(t, res.Error, "GET ")
	assert.NotContains(t, res.Error, "/api/")
}

func TestVerify_PlatformTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockVerificationAPI(ctrl)
	api.EXPECT().GetEvent(gomock.Any(), "tok", int64(1)).Return(nil,
		apperrors.FromContext(context.DeadlineExceeded, "GET /api/events/1"))

	v, err := NewTicketVerifier(TicketVerifierOptions{API: api})
	require.NoError(t, err)

	res := v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

	assert.Equal(t, StepFetchEvent, res.Step)
	assert.Equal(t, MsgPlatformUnreachable, res.Error)
}

func TestVerify_IsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"valid", "VV-1-1-1", true},
		{"event not found", "VV-99-1-1", false},
		{"malformed", "not-a-key", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifierFixture(t)

			first := f.verify(t, "admin-token", tt.key)
			second := f.verify(t, "admin-token", tt.key)

			assert.Equal(t, tt.valid, first.IsValid)
			assert.Equal(t, first.IsValid, second.IsValid)
			assert.Equal(t, first.Error, second.Error)
			assert.Equal(t, first.Step, second.Step)
			assert.Equal(t, first.Ticket, second.Ticket)
		})
	}
}

func TestVerify_UnexpectedErrorBecomesResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockVerificationAPI(ctrl)
	eventID := int64(1)
	userID := int64(3)
	api.EXPECT().GetEvent(gomock.Any(), "tok", int64(1)).Return(&model.Event{ID: 1, Name: "Concert"}, nil)
	api.EXPECT().GetOrder(gomock.Any(), "tok", int64(1)).Return(&model.Order{
		ID: 1, EventID: &eventID, UserID: &userID, Tickets: []model.Ticket{{ID: 1}},
	}, nil)
	api.EXPECT().GetUser(gomock.Any(), "tok", int64(3)).Return(plainUser(), nil)
	api.EXPECT().EventParticipants(gomock.Any(), "tok", int64(1)).Return(nil, unavailable())

	v, err := NewTicketVerifier(TicketVerifierOptions{API: api})
	require.NoError(t, err)

	res := v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

	assert.False(t, res.IsValid)
	assert.Equal(t, StepParticipantCheck, res.Step)
	assert.Equal(t, MsgPlatformUnreachable, res.Error)
}

func TestVerify_PanicBecomesResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockVerificationAPI(ctrl)
	// a nil event without error trips the pipeline
	api.EXPECT().GetEvent(gomock.Any(), "tok", int64(1)).Return(nil, nil)

	rec := &statsd.Recorder{}
	v, err := NewTicketVerifier(TicketVerifierOptions{API: api, Metrics: rec})
	require.NoError(t, err)

	var res model.TicketVerificationResult
	require.NotPanics(t, func() {
		res = v.Verify(context.Background(), VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})
	})

	assert.False(t, res.IsValid)
	assert.Equal(t, StepFetchEvent, res.Step)
	assert.Equal(t, MsgVerificationError, res.Error)
	assert.Len(t, rec.Named("tickets.verify"), 1)
}

func TestVerify_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockVerificationAPI(ctrl)
	api.EXPECT().GetEvent(gomock.Any(), "tok", int64(1)).DoAndReturn(
		func(ctx context.Context, _ string, _ int64) (*model.Event, error) {
			return nil, apperrors.FromContext(ctx.Err(), "requête annulée")
		})

	v, err := NewTicketVerifier(TicketVerifierOptions{API: api})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := v.Verify(ctx, VerifyInput{Key: "VV-1-1-1", Token: "tok", Caller: adminUser()})

	assert.False(t, res.IsValid)
	assert.Equal(t, StepFetchEvent, res.Step)
	assert.Equal(t, MsgVerificationError, res.Error)
}

func TestVerificationFailure_Error(t *testing.T) {
	err := fail(StepFindTicket, MsgTicketNotInOrder)
	var vf *VerificationFailure
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, "find_ticket: Billet non trouvé dans la commande", err.Error())
}
