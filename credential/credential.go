// Package credential provides the two ways of authenticating to a Microsoft
// Foundry endpoint: a Microsoft Entra ID bearer token, or a static API key.
//
// Either way the result is an opaque string that the OpenAI client presents
// as its API key.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// DefaultScope is the token scope for Microsoft Foundry project endpoints.
const DefaultScope = "https://ai.azure.com/.default"

// Mode is the authentication mode of a [Source].
type Mode string

const (
	// ModeEntraID authenticates with a Microsoft Entra ID bearer token.
	ModeEntraID Mode = "entra"

	// ModeAPIKey authenticates with a static API key.
	ModeAPIKey Mode = "apikey"
)

// ErrEmptyToken is returned when a credential resolves to an empty string.
var ErrEmptyToken = errors.New("empty token")

// Source resolves the secret presented to the inference endpoint.
type Source interface {
	// Token returns the secret to send as the bearer token.
	Token(ctx context.Context) (string, error)

	// Mode reports how the secret was obtained.
	Mode() Mode
}

// Static is a [Source] for a fixed API key.
type Static struct {
	key string
}

// NewStatic returns a [Source] that always returns key.
func NewStatic(key string) (*Static, error) {
	if key == "" {
		return nil, fmt.Errorf("api key: %w", ErrEmptyToken)
	}
	return &Static{key: key}, nil
}

// Token returns the API key.
func (s *Static) Token(context.Context) (string, error) {
	return s.key, nil
}

// Mode returns [ModeAPIKey].
func (s *Static) Mode() Mode {
	return ModeAPIKey
}

// EntraID is a [Source] backed by an Azure token credential.
//
// Every call to Token asks the underlying credential for a token; caching
// and refreshing are left to the credential itself.
type EntraID struct {
	cred   azcore.TokenCredential
	scopes []string
}

// NewEntraID returns a [Source] that requests tokens from cred for the given
// scopes, or [DefaultScope] if none are given.
func NewEntraID(cred azcore.TokenCredential, scopes ...string) *EntraID {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	return &EntraID{cred: cred, scopes: scopes}
}

// NewDefaultEntraID returns a [Source] using the Azure SDK's default
// credential chain (environment, workload identity, managed identity,
// Azure CLI, and so on).
func NewDefaultEntraID(scopes ...string) (*EntraID, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return NewEntraID(cred, scopes...), nil
}

// Token requests an access token and returns its value.
func (e *EntraID) Token(ctx context.Context) (string, error) {
	tok, err := e.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: e.scopes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("failed to get token: %w", ErrEmptyToken)
	}
	return tok.Token, nil
}

// Mode returns [ModeEntraID].
func (e *EntraID) Mode() Mode {
	return ModeEntraID
}

// Scopes returns the scopes requested for each token.
func (e *EntraID) Scopes() []string {
	return e.scopes
}
