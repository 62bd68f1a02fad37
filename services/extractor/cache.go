package extractor

import (
	"context"
	"encoding/json"

	"teambridge-backend/lib/scrapers/sportsengine"
	"teambridge-backend/services/sessions"
)

// CachedExtraction is the per-session extraction snapshot. For the
// delegated variant it also tracks the pending task before resolution.
type CachedExtraction struct {
	PendingTaskId  string `json:"pendingTaskId,omitempty"`
	PendingTaskUrl string `json:"pendingTaskUrl,omitempty"`
	Resolved       bool   `json:"resolved"`
	ResolvedAt     int64  `json:"resolvedAt,omitempty"`

	Organizations []sportsengine.Organization    `json:"organizations,omitempty"`
	TeamsByOrg    map[string][]sportsengine.Team `json:"teamsByOrg,omitempty"`
	RostersByTeam map[string]sportsengine.Roster `json:"rostersByTeam,omitempty"`

	// ErrorsByOrg keeps the failure recorded for an organization's
	// subtree, so a preview served from the cache renders the same
	// partial-failure state as the walk that produced it.
	ErrorsByOrg map[string]string `json:"errorsByOrg,omitempty"`
}

func loadCache(session sessions.Session) (CachedExtraction, bool) {
	if session.CachedExtraction == nil {
		return CachedExtraction{}, false
	}
	var cache CachedExtraction
	err := json.Unmarshal(session.CachedExtraction, &cache)
	if err != nil {
		return CachedExtraction{}, false
	}
	return cache, true
}

func storeCache(ctx context.Context, store *sessions.Store, token string, cache CachedExtraction) error {
	raw, err := json.Marshal(cache)
	if err != nil {
		return err
	}
	return store.SetCachedExtraction(ctx, token, raw)
}
