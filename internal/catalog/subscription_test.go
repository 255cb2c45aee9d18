package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shoenig/test/must"
)

func stubAzAccountID(t *testing.T, id string, err error) *int {
	t.Helper()
	calls := 0
	orig := azAccountID
	azAccountID = func(context.Context) (string, error) {
		calls++
		return id, err
	}
	t.Cleanup(func() { azAccountID = orig })
	return &calls
}

func TestResolveSubscription(t *testing.T) {
	t.Run("candidate", func(t *testing.T) {
		calls := stubAzAccountID(t, "from-cli", nil)
		id, err := ResolveSubscription(t.Context(), "", "  ", " from-flag ", "from-env")
		must.NoError(t, err)
		must.Eq(t, "from-flag", id)
		must.Eq(t, 0, *calls)
	})

	t.Run("cli", func(t *testing.T) {
		calls := stubAzAccountID(t, "from-cli", nil)
		id, err := ResolveSubscription(t.Context(), "", "")
		must.NoError(t, err)
		must.Eq(t, "from-cli", id)
		must.Eq(t, 1, *calls)
	})

	t.Run("cli error", func(t *testing.T) {
		stubAzAccountID(t, "", errors.New("az: not found"))
		_, err := ResolveSubscription(t.Context())
		must.ErrorIs(t, err, ErrNoSubscription)
		must.StrContains(t, err.Error(), "az: not found")
	})

	t.Run("cli empty", func(t *testing.T) {
		stubAzAccountID(t, "", nil)
		_, err := ResolveSubscription(t.Context())
		must.ErrorIs(t, err, ErrNoSubscription)
	})
}
