package service

import (
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// IsValidEventType reports whether t names a known session classification.
func IsValidEventType(t model.EventType) bool {
	switch t {
	case model.EventTraining, model.EventMatch:
		return true
	default:
		return false
	}
}

// ValidateAssignments rejects re-introducing a duplicate roster-player
// assignment across rows before anything is persisted. Nil player ids are
// deliberate exclusions and may repeat freely.
func ValidateAssignments(mappings []model.PlayerMapping) error {
	seen := make(map[int64]bool, len(mappings))
	for _, m := range mappings {
		if m.PlayerID == nil {
			continue
		}
		if seen[*m.PlayerID] {
			return ErrDuplicateMapping
		}
		seen[*m.PlayerID] = true
	}
	return nil
}
