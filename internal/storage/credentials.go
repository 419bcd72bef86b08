// credentials.go - Service-account client options for the Google Workspace collaborators

package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/api/option"
)

const googleTokenURI = "https://oauth2.googleapis.com/token"

// ServiceAccountOptions builds client options from a service-account email and PEM key.
// Literal "\n" sequences in the key (as stored in env files) are turned into newlines.
func ServiceAccountOptions(clientEmail, privateKey string, scopes ...string) ([]option.ClientOption, error) {
	if clientEmail == "" || privateKey == "" {
		return nil, fmt.Errorf("service account email and private key are required")
	}

	credentials, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": clientEmail,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    googleTokenURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account credentials: %w", err)
	}

	return []option.ClientOption{
		option.WithCredentialsJSON(credentials),
		option.WithScopes(scopes...),
	}, nil
}
