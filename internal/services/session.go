package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/desertthunder/tidalctl/internal/shared"
	"github.com/desertthunder/tidalctl/internal/store"
	"golang.org/x/oauth2"
)

const tidalAuthBase = "https://auth.tidal.com/v1/oauth2"

// deviceClientID is the public client identifier used for the device-code
// login flow.
const deviceClientID = "zU4XHVVkc2tDPo4t"

// Session is the reusable Tidal session persisted between invocations.
type Session struct {
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiryTime   time.Time `json:"expiry_time"`
	UserID       int64     `json:"user_id"`
	CountryCode  string    `json:"country_code"`
}

// LoadSession reads a previously saved session file. A missing file means
// the user has never logged in.
func LoadSession(path string) (*Session, error) {
	var session Session
	if err := store.ReadJSONFile(path, &session); err != nil {
		return nil, err
	}

	if session.AccessToken == "" {
		return nil, fmt.Errorf("%w: no session at %s, run the login command first", shared.ErrNotAuthenticated, path)
	}

	return &session, nil
}

// Save persists the session for later runs.
func (s *Session) Save(path string) error {
	return store.WriteJSONFile(path, s)
}

// LoginDeviceFlow runs the OAuth device-code flow, printing the verification
// link to w, and returns the authorized session.
func LoginDeviceFlow(ctx context.Context, w io.Writer) (*Session, error) {
	conf := &oauth2.Config{
		ClientID: deviceClientID,
		Scopes:   []string{"r_usr", "w_usr"},
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: tidalAuthBase + "/device_authorization",
			TokenURL:      tidalAuthBase + "/token",
		},
	}

	auth, err := conf.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: device authorization: %v", shared.ErrAuthFailed, err)
	}

	if auth.VerificationURIComplete != "" {
		fmt.Fprintf(w, "Visit: https://%s\n", auth.VerificationURIComplete)
	}
	fmt.Fprintf(w, "Or go to https://%s and enter code: %s\n", auth.VerificationURI, auth.UserCode)
	fmt.Fprintln(w, "Waiting for authorization...")

	token, err := conf.DeviceAccessToken(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	session := &Session{
		TokenType:    token.TokenType,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiryTime:   token.Expiry,
	}

	// The token response carries the user object alongside the grant.
	if user, ok := token.Extra("user").(map[string]any); ok {
		if id, ok := user["userId"].(float64); ok {
			session.UserID = int64(id)
		}
		if cc, ok := user["countryCode"].(string); ok {
			session.CountryCode = cc
		}
	}

	return session, nil
}
