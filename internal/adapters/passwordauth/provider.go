package passwordauth

// Package passwordauth exchanges user credentials with the payroll API using the
// OAuth2 resource-owner password grant.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/target/paystream-client/internal/adapters/apiclient"
	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/ports"
)

const (
	loginPath  = "/auth/login"
	signupPath = "/auth/signup"
)

var _ ports.Authenticator = (*Provider)(nil)

// ProviderConfig holds configuration for the password-grant provider.
type ProviderConfig struct {
	// API is used for signup and identity checks; its HTTP client also carries the token request.
	API *apiclient.Client
	// ClientID is sent with the token request when set.
	ClientID string
}

// Provider implements ports.Authenticator against the payroll API.
type Provider struct {
	config *oauth2.Config
	api    *apiclient.Client
}

// NewProvider creates a new password-grant provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.API == nil {
		return nil, errors.New("api client is required")
	}
	return &Provider{
		api: cfg.API,
		config: &oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.API.Endpoint(loginPath),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}, nil
}

// Login exchanges credentials for a bearer token and the account's role claim.
func (p *Provider) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Session, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return domainauth.Session{}, apperrors.Validation("username and password are required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.api.HTTPClient())
	tok, err := p.config.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return domainauth.Session{}, classifyTokenError(err)
	}
	if tok.AccessToken == "" {
		return domainauth.Session{}, apperrors.Internal("token response has no access token")
	}

	claims := introspect(tok.AccessToken)
	role, err := roleFrom(tok, claims)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnknown, "token response has no usable role")
	}

	sess := domainauth.Session{
		Token:     tok.AccessToken,
		Role:      role,
		Subject:   claims.subject,
		ExpiresAt: claims.expiresAt,
	}
	if sess.Subject == "" {
		sess.Subject = creds.Username
	}
	if sess.ExpiresAt.IsZero() && !tok.Expiry.IsZero() {
		sess.ExpiresAt = tok.Expiry
	}
	return sess, nil
}

type signupBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Signup creates an account with the chosen role.
func (p *Provider) Signup(ctx context.Context, profile domainauth.Profile) error {
	if strings.TrimSpace(profile.Email) == "" || profile.Password == "" {
		return apperrors.Validation("email and password are required")
	}
	if !profile.Role.Valid() {
		return apperrors.ValidationField("role", fmt.Sprintf("invalid role: %q", profile.Role))
	}
	_, err := p.api.Do(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      signupPath,
		Body:      signupBody{Email: strings.TrimSpace(profile.Email), Password: profile.Password, Role: profile.Role.String()},
		Anonymous: true,
	})
	return err
}

// Verify returns the account the server associates with token.
func (p *Provider) Verify(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, apperrors.Unauthenticated("not logged in")
	}
	return p.api.WithToken(token).Me(ctx)
}

func roleFrom(tok *oauth2.Token, claims tokenClaims) (domainauth.Role, error) {
	if v, ok := tok.Extra("role").(string); ok && v != "" {
		return domainauth.ParseRole(v)
	}
	if claims.role != "" {
		return domainauth.ParseRole(claims.role)
	}
	return "", errors.New("role claim missing")
}

// classifyTokenError maps token endpoint failures onto the client error codes.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		status := re.Response.StatusCode
		code := apperrors.ErrCodeValidation
		switch {
		case status == http.StatusUnauthorized:
			code = apperrors.ErrCodeUnauthenticated
		case status == http.StatusForbidden:
			code = apperrors.ErrCodeForbidden
		case status >= http.StatusInternalServerError:
			code = apperrors.ErrCodeUnknown
		}
		return &apperrors.AppError{Code: code, Message: "login rejected", Cause: err, Status: status}
	}
	return apperrors.Transport(err)
}
