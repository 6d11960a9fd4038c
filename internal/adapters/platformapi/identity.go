package platformapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
)

// Authentication messages shown on the login form.
const (
	MsgBadCredentials = "Email ou mot de passe incorrect"
	MsgAccessDenied   = "Accès refusé : compte non autorisé"
	MsgServerError    = "Erreur serveur, veuillez réessayer plus tard"
)

var (
	_ ports.IdentityClient = (*Client)(nil)
	_ ports.Authenticator  = (*Client)(nil)
)

// Me returns the user behind token (GET /users/me).
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.Unauthorized("jeton manquant")
	}
	var u model.User
	if err := c.getJSON(ctx, request{Path: "/users/me", Token: token}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate exchanges credentials for a bearer token (POST /auth/authenticate).
func (c *Client) Authenticate(ctx context.Context, creds ports.Credentials) (ports.AuthResult, error) {
	data, err := c.do(ctx, request{
		Method: http.MethodPost,
		Path:   "/auth/authenticate",
		Body:   creds,
	})
	if err != nil {
		return ports.AuthResult{}, authenticationError(err)
	}

	var res ports.AuthResult
	if err := decode(data, &res); err != nil {
		return ports.AuthResult{}, err
	}
	if res.Token == "" {
		return ports.AuthResult{}, apperrors.Internal("la plateforme n'a pas renvoyé de jeton")
	}
	return res, nil
}

// authenticationError replaces platform statuses with the login form messages.
func authenticationError(err error) error {
	status := Status(err)
	switch {
	case status == 0:
		return err
	case status == http.StatusUnauthorized:
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, MsgBadCredentials)
	case status == http.StatusForbidden:
		return apperrors.Wrap(err, apperrors.ErrCodeForbidden, MsgAccessDenied)
	case status == http.StatusInternalServerError:
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, MsgServerError)
	default:
		return apperrors.Wrap(err, codeForStatus(status), fmt.Sprintf("Erreur de connexion (%d)", status))
	}
}
