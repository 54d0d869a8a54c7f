package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// AuthCodeURL returns the consent screen URL. state carries the tenant id.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("platform_id", "mp"))
}

// ExchangeCode runs the authorization_code grant.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, tokenError("exchange authorization code", err)
	}
	return tokenSetFrom(tok), nil
}

// RefreshToken runs the refresh_token grant.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError("refresh token", err)
	}
	return tokenSetFrom(tok), nil
}

// GetUser returns the account that owns accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// tokenError converts oauth2 failures into ProviderErrors so callers can inspect the
// provider's error code.
func tokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("%s: %w", op, err)
	}

	status := http.StatusBadRequest
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	perr := parseError(status, re.Body)
	if perr.Code == "" {
		perr.Code = re.ErrorCode
	}
	if perr.Message == "" {
		perr.Message = re.ErrorDescription
	}
	return fmt.Errorf("%s: %w", op, perr)
}

func tokenSetFrom(tok *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if v := tok.Extra("user_id"); v != nil {
		ts.UserID = stringify(v)
	}
	if v, ok := tok.Extra("public_key").(string); ok {
		ts.PublicKey = v
	}
	if v, ok := tok.Extra("live_mode").(bool); ok {
		ts.LiveMode = &v
	}
	if v, ok := tok.Extra("scope").(string); ok {
		ts.Scope = v
	}
	return ts
}
