package credential_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/picatz/foundry/credential"
	"github.com/shoenig/test/must"
)

// fakeTokenCredential is an [azcore.TokenCredential] that returns a fixed
// token (or error) and records the scopes it was asked for.
type fakeTokenCredential struct {
	token  string
	err    error
	scopes [][]string
}

func (f *fakeTokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = append(f.scopes, opts.Scopes)
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: f.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestStatic(t *testing.T) {
	src, err := credential.NewStatic("secret")
	must.NoError(t, err)
	must.Eq(t, credential.ModeAPIKey, src.Mode())

	tok, err := src.Token(t.Context())
	must.NoError(t, err)
	must.Eq(t, "secret", tok)
}

func TestStatic_empty(t *testing.T) {
	_, err := credential.NewStatic("")
	must.ErrorIs(t, err, credential.ErrEmptyToken)
}

func TestEntraID_defaultScope(t *testing.T) {
	fake := &fakeTokenCredential{token: "entra-token"}

	src := credential.NewEntraID(fake)
	must.Eq(t, credential.ModeEntraID, src.Mode())
	must.Eq(t, []string{credential.DefaultScope}, src.Scopes())

	tok, err := src.Token(t.Context())
	must.NoError(t, err)
	must.Eq(t, "entra-token", tok)
	must.Eq(t, [][]string{{"https://ai.azure.com/.default"}}, fake.scopes)
}

func TestEntraID_customScopes(t *testing.T) {
	fake := &fakeTokenCredential{token: "entra-token"}

	src := credential.NewEntraID(fake, "https://cognitiveservices.azure.com/.default")

	_, err := src.Token(t.Context())
	must.NoError(t, err)
	must.Eq(t, [][]string{{"https://cognitiveservices.azure.com/.default"}}, fake.scopes)
}

func TestEntraID_error(t *testing.T) {
	boom := errors.New("no credential available")

	src := credential.NewEntraID(&fakeTokenCredential{err: boom})

	_, err := src.Token(t.Context())
	must.ErrorIs(t, err, boom)
}

func TestEntraID_emptyToken(t *testing.T) {
	src := credential.NewEntraID(&fakeTokenCredential{})

	_, err := src.Token(t.Context())
	must.ErrorIs(t, err, credential.ErrEmptyToken)
}
