package openid

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const GoogleIssuer = "https://accounts.google.com"

type Config struct {
	ClientID     string `yaml:"clientID" envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"clientSecret" envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirectURL" envconfig:"OAUTH_REDIRECT_URL" default:"http://localhost:8080/auth/google/callback"`
	Issuer       string `yaml:"issuer" envconfig:"OAUTH_ISSUER" default:"https://accounts.google.com"`
}

// Identity is the subset of ID token claims the session keeps.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Provider struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config oauth2.Config
}

// NewProvider runs OIDC discovery against the issuer.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = GoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "oidc discovery")
	}
	oauth2Config := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return &Provider{
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: oauth2Config,
	}, nil
}

func (p *Provider) AuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and verifies the ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (Identity, error) {
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, errors.Wrap(err, "failed to exchange token")
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Identity{}, errors.New("no id_token field in oauth2 token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, errors.Wrap(err, "failed to verify ID Token")
	}
	var id Identity
	if err := idToken.Claims(&id); err != nil {
		return Identity{}, errors.Wrap(err, "id token claims")
	}
	if id.Subject == "" {
		id.Subject = idToken.Subject
	}
	return id, nil
}
