package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoSubscription is returned when no subscription can be resolved.
var ErrNoSubscription = errors.New("could not resolve a subscription; pass --subscription or sign in with 'az login'")

// azAccountID asks the Azure CLI for the active subscription.
var azAccountID = func(ctx context.Context) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, "az", "account", "show", "--query", "id", "-o", "tsv")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ResolveSubscription returns the first non-empty candidate, or else the
// Azure CLI's active subscription.
func ResolveSubscription(ctx context.Context, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c, nil
		}
	}

	id, err := azAccountID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSubscription, err)
	}
	if id == "" {
		return "", ErrNoSubscription
	}
	return id, nil
}
