package catalog

import (
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/shoenig/test/must"
)

func TestEntryFromModel(t *testing.T) {
	m := &armcognitiveservices.Model{
		Model: &armcognitiveservices.AccountModel{
			Format:  to.Ptr("OpenAI"),
			Name:    to.Ptr("gpt-4.1-mini"),
			Version: to.Ptr("2025-04-14"),
			Capabilities: map[string]*string{
				"responses":      to.Ptr("true"),
				"chatCompletion": to.Ptr("true"),
				"unset":          nil,
			},
			SKUs: []*armcognitiveservices.ModelSKU{
				{Name: to.Ptr("GlobalStandard")},
				nil,
				{},
				{Name: to.Ptr("Standard")},
			},
		},
	}

	e, ok := entryFromModel("eastus", m)
	must.True(t, ok)
	must.Eq(t, Entry{
		Location: "eastus",
		Format:   "OpenAI",
		Name:     "gpt-4.1-mini",
		Version:  "2025-04-14",
		Capabilities: map[string]string{
			"responses":      "true",
			"chatCompletion": "true",
			"unset":          "",
		},
		SKUs: []string{"GlobalStandard", "Standard"},
	}, e)
	must.True(t, Filter(e, false))
}

func TestEntryFromModel_missing(t *testing.T) {
	_, ok := entryFromModel("eastus", nil)
	must.False(t, ok)

	_, ok = entryFromModel("eastus", &armcognitiveservices.Model{})
	must.False(t, ok)

	e, ok := entryFromModel("eastus", &armcognitiveservices.Model{Model: &armcognitiveservices.AccountModel{}})
	must.True(t, ok)
	must.Eq(t, "", e.Version)
	must.MapEmpty(t, e.Capabilities)
}
