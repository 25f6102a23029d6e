// Package googleauth turns a file-backed OAuth token into an authorized HTTP
// client for the Google backends.
//
// The core only needs "a usable client or a failure signal". Obtaining the
// token in the first place (the consent flow) is an interactive CLI concern;
// when the token file is missing this package fails with instructions rather
// than starting a browser flow of its own.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Client builds an authorized HTTP client from an OAuth client-secrets file
// and a stored token file.
func Client(ctx context.Context, credentialsPath, tokenPath string, scopes ...string) (*http.Client, error) {
	secrets, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("googleauth: reading credentials file %s: %w", credentialsPath, err)
	}

	config, err := google.ConfigFromJSON(secrets, scopes...)
	if err != nil {
		return nil, fmt.Errorf("googleauth: parsing credentials file: %w", err)
	}

	token, err := TokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf(
			"googleauth: no usable token at %s (run the authorization flow first): %w",
			tokenPath, err)
	}

	// The token source refreshes expired tokens transparently using the
	// stored refresh token.
	return config.Client(ctx, token), nil
}

// TokenFromFile loads a stored OAuth token.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return token, nil
}

// SaveToken persists a token for later runs.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("googleauth: saving token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
