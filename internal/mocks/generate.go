// Package mocks provides mock implementations of the dashboard ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in internal/ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	identity := mocks.NewMockIdentityClient(ctrl)
//	identity.EXPECT().Me(gomock.Any(), "token").Return(user, nil)
package mocks

// Generate mock for IdentityClient interface from internal/ports package.
// This creates MockIdentityClient with methods for all IdentityClient interface methods:
// Me
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=identity_client_mock.go github.com/vv-events/dashboard/internal/ports IdentityClient

// Generate mock for Authenticator interface from internal/ports package.
// This creates MockAuthenticator with methods for all Authenticator interface methods:
// Authenticate
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=authenticator_mock.go github.com/vv-events/dashboard/internal/ports Authenticator

// Generate mock for AuthProvider interface from internal/ports package.
// This creates MockAuthProvider with methods for all AuthProvider interface methods:
// Begin, Exchange
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_provider_mock.go github.com/vv-events/dashboard/internal/ports AuthProvider

// Generate mock for VerificationAPI interface from internal/ports package.
// This creates MockVerificationAPI with methods for all VerificationAPI interface methods:
// GetEvent, GetOrder, GetUser, FollowUser, FollowEvents, EventParticipants
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=verification_api_mock.go github.com/vv-events/dashboard/internal/ports VerificationAPI

// Generate mock for CatalogAPI interface from internal/ports package.
// This creates MockCatalogAPI with methods for all CatalogAPI interface methods:
// List, Get, Create, Update, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=catalog_api_mock.go github.com/vv-events/dashboard/internal/ports CatalogAPI

// Generate mock for SessionCache interface from internal/ports package.
// This creates MockSessionCache with methods for all SessionCache interface methods:
// GetUser, SaveUser, Clear, GetPreference, SetPreference
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=session_cache_mock.go github.com/vv-events/dashboard/internal/ports SessionCache
