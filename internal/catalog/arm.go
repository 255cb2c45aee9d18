package catalog

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
)

// ARMLister lists catalog entries through the Cognitive Services
// management API.
type ARMLister struct {
	client *armcognitiveservices.ModelsClient
}

// NewARMLister returns a [Lister] for subscriptionID, authenticated with cred.
func NewARMLister(subscriptionID string, cred azcore.TokenCredential) (*ARMLister, error) {
	client, err := armcognitiveservices.NewModelsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create models client: %w", err)
	}
	return &ARMLister{client: client}, nil
}

// List returns every model listed in location, following all pages.
func (a *ARMLister) List(ctx context.Context, location string) ([]Entry, error) {
	var entries []Entry

	pager := a.client.NewListPager(location, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list models in %s: %w", location, err)
		}
		for _, m := range page.Value {
			if e, ok := entryFromModel(location, m); ok {
				entries = append(entries, e)
			}
		}
	}

	return entries, nil
}

func entryFromModel(location string, m *armcognitiveservices.Model) (Entry, bool) {
	if m == nil || m.Model == nil {
		return Entry{}, false
	}

	am := m.Model

	e := Entry{
		Location: location,
		Format:   deref(am.Format),
		Name:     deref(am.Name),
		Version:  deref(am.Version),
	}

	if len(am.Capabilities) > 0 {
		e.Capabilities = make(map[string]string, len(am.Capabilities))
		for k, v := range am.Capabilities {
			e.Capabilities[k] = deref(v)
		}
	}

	for _, sku := range am.SKUs {
		if sku != nil && sku.Name != nil {
			e.SKUs = append(e.SKUs, *sku.Name)
		}
	}

	return e, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
