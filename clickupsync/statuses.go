package clickupsync

import (
	"context"
	"strings"

	"github.com/begoneskadedjur/kundportal-sub005/models"
)

type statusEntry struct {
	canonicalName string
	isTerminal    bool
}

// StatusRegistry is the process-wide status classification, built once at
// startup from the status_mappings table and immutable afterwards. Both sync
// paths go through it, so reclassifying a status is a data change only.
type StatusRegistry struct {
	byCode  map[string]statusEntry
	byName  map[string]bool
	removed models.StatusMapping
}

func NewStatusRegistry(mappings []models.StatusMapping) *StatusRegistry {
	reg := &StatusRegistry{
		byCode: make(map[string]statusEntry, len(mappings)),
		byName: make(map[string]bool, len(mappings)),
		removed: models.StatusMapping{
			ExternalCode:  models.StatusCodeRemoved,
			CanonicalName: models.StatusNameRemoved,
			IsTerminal:    true,
		},
	}
	for _, m := range mappings {
		code := strings.ToLower(strings.TrimSpace(m.ExternalCode))
		if code == "" {
			continue
		}
		reg.byCode[code] = statusEntry{canonicalName: m.CanonicalName, isTerminal: m.IsTerminal}
		reg.byName[strings.ToLower(m.CanonicalName)] = m.IsTerminal
		if code == models.StatusCodeRemoved {
			reg.removed = m
		}
	}
	return reg
}

// LoadStatusRegistry reads the classification table. Called once from main.
func LoadStatusRegistry(ctx context.Context) (*StatusRegistry, error) {
	mappings, err := models.ListStatusMappings(ctx)
	if err != nil {
		return nil, err
	}
	return NewStatusRegistry(mappings), nil
}

// CanonicalName maps an external status code to its canonical name. Unknown
// codes fall back to the raw code so no status is ever lost.
func (r *StatusRegistry) CanonicalName(code string) string {
	if entry, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]; ok {
		return entry.canonicalName
	}
	return code
}

func (r *StatusRegistry) IsTerminal(canonicalName string) bool {
	if terminal, ok := r.byName[strings.ToLower(strings.TrimSpace(canonicalName))]; ok {
		return terminal
	}
	// Unknown statuses are open by definition; only classified statuses close
	// a case.
	return false
}

// Removed returns the terminal sentinel written by taskDeleted webhooks.
func (r *StatusRegistry) Removed() (name string, code string) {
	return r.removed.CanonicalName, r.removed.ExternalCode
}
