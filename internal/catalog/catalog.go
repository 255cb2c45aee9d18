// Package catalog finds the models a subscription can use with the
// Responses API by scanning the Azure Cognitive Services model catalog
// in every location.
//
// The control plane only tags OpenAI-format models with the "responses"
// capability. Non-OpenAI models (DeepSeek, Meta, xAI, and others) that
// support chat completion also work with the Responses API, so they can be
// listed separately by their "chatCompletion" capability.
package catalog

import (
	"cmp"
	"maps"
	"slices"
)

// Locations are the Azure locations known to host AI Services model
// catalogs. The catalog API is location-scoped, so each one is queried.
var Locations = []string{
	"australiaeast",
	"brazilsouth",
	"canadacentral",
	"canadaeast",
	"eastus",
	"eastus2",
	"francecentral",
	"germanywestcentral",
	"japaneast",
	"koreacentral",
	"northcentralus",
	"norwayeast",
	"polandcentral",
	"southafricanorth",
	"southcentralus",
	"southeastasia",
	"southindia",
	"swedencentral",
	"switzerlandnorth",
	"uksouth",
	"westeurope",
	"westus",
	"westus3",
}

// DefaultVersion labels entries without a version.
const DefaultVersion = "(default)"

// FormatOpenAI is the format of models served by OpenAI.
const FormatOpenAI = "OpenAI"

// Entry is one model version as listed in one location.
type Entry struct {
	Location     string            `json:"location"`
	Format       string            `json:"format"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Capabilities map[string]string `json:"capabilities,omitempty"`
	SKUs         []string          `json:"skus,omitempty"`
}

// Filter reports whether e should be listed.
//
// By default only models tagged with the "responses" capability are kept.
// With nonOpenAI, only non-OpenAI models with the "chatCompletion"
// capability are kept instead.
func Filter(e Entry, nonOpenAI bool) bool {
	if nonOpenAI {
		return e.Format != FormatOpenAI && e.Capabilities["chatCompletion"] == "true"
	}
	return e.Capabilities["responses"] == "true"
}

// Model is a model aggregated across versions and locations.
type Model struct {
	Format string
	Name   string

	// Versions maps each version to the sorted locations offering it.
	Versions map[string][]string

	// SKUs are the sorted, distinct SKU names across all entries.
	SKUs []string

	// Global is true if the model is offered in every scanned location.
	Global bool
}

// Locations returns the sorted locations offering any version of m.
func (m Model) Locations() []string {
	var all []string
	for _, locs := range m.Versions {
		all = append(all, locs...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

// SortedVersions returns the version names in order.
func (m Model) SortedVersions() []string {
	return slices.Sorted(maps.Keys(m.Versions))
}

type modelKey struct {
	format, name string
}

// Aggregate groups entries by format and name. locations is the set that
// was scanned, used to decide whether a model is global. The result is
// sorted by format, then name.
func Aggregate(entries []Entry, locations []string) []Model {
	type acc struct {
		versions map[string]map[string]struct{}
		skus     map[string]struct{}
	}

	groups := map[modelKey]*acc{}

	for _, e := range entries {
		k := modelKey{format: e.Format, name: e.Name}
		a, ok := groups[k]
		if !ok {
			a = &acc{
				versions: map[string]map[string]struct{}{},
				skus:     map[string]struct{}{},
			}
			groups[k] = a
		}

		version := cmp.Or(e.Version, DefaultVersion)
		if a.versions[version] == nil {
			a.versions[version] = map[string]struct{}{}
		}
		a.versions[version][e.Location] = struct{}{}

		for _, sku := range e.SKUs {
			a.skus[sku] = struct{}{}
		}
	}

	models := make([]Model, 0, len(groups))
	for k, a := range groups {
		m := Model{
			Format:   k.format,
			Name:     k.name,
			Versions: make(map[string][]string, len(a.versions)),
			SKUs:     slices.Sorted(maps.Keys(a.skus)),
		}
		for version, locs := range a.versions {
			m.Versions[version] = slices.Sorted(maps.Keys(locs))
		}
		m.Global = isSuperset(m.Locations(), locations)
		models = append(models, m)
	}

	slices.SortFunc(models, func(a, b Model) int {
		return cmp.Or(cmp.Compare(a.Format, b.Format), cmp.Compare(a.Name, b.Name))
	})

	return models
}

// isSuperset reports whether sorted have contains every element of want.
func isSuperset(have, want []string) bool {
	for _, w := range want {
		if _, ok := slices.BinarySearch(have, w); !ok {
			return false
		}
	}
	return true
}

// Select filters entries and aggregates the result.
func Select(entries []Entry, locations []string, nonOpenAI bool) []Model {
	var kept []Entry
	for _, e := range entries {
		if Filter(e, nonOpenAI) {
			kept = append(kept, e)
		}
	}
	return Aggregate(kept, locations)
}
