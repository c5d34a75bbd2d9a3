package clickupsync

import (
	"context"
	"strings"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/google/uuid"
)

// TechnicianDirectory provides the read-only technician reference data the
// resolver matches against. Injected so the directory is loaded once per
// process instead of being duplicated at call sites.
type TechnicianDirectory interface {
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
}

// dbTechnicianDirectory is the production directory: technicians table,
// redis-cached.
type dbTechnicianDirectory struct{}

func NewTechnicianDirectory() TechnicianDirectory {
	return dbTechnicianDirectory{}
}

func (dbTechnicianDirectory) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	return models.ListActiveTechnicians(ctx)
}

// maxAssignees caps how many external assignees a case stores. Extra
// assignees are silently dropped; the case tables model exactly three
// positional roles.
const maxAssignees = 3

type resolvedAssignee struct {
	TechnicianId *uuid.UUID
	Name         string
	Email        string
}

// resolveAssignees maps the task's assignees against the directory in order;
// position decides the primary/secondary/tertiary role. Unmatched assignees
// keep their raw name and email with a nil technician id.
func resolveAssignees(assignees []clickupAssignee, directory []models.Technician) []resolvedAssignee {
	if len(assignees) > maxAssignees {
		assignees = assignees[:maxAssignees]
	}

	out := make([]resolvedAssignee, 0, len(assignees))
	for _, a := range assignees {
		resolved := resolvedAssignee{Name: a.Username, Email: a.Email}
		if match := matchTechnician(a.Username, a.Email, directory); match != nil {
			id := match.ID
			resolved.TechnicianId = &id
		}
		out = append(out, resolved)
	}
	return out
}

// matchTechnician finds a directory entry for an assignee reference. Exact
// case-insensitive email match wins; otherwise the directory name is split
// into first/last tokens and matched bidirectionally as substrings against
// the reported name. First match wins, so email always beats a name
// mismatch.
func matchTechnician(name string, email string, directory []models.Technician) *models.Technician {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		for i := range directory {
			if strings.ToLower(strings.TrimSpace(directory[i].Email)) == email {
				return &directory[i]
			}
		}
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	for i := range directory {
		tokens := strings.Fields(strings.ToLower(directory[i].Name))
		if len(tokens) == 0 {
			continue
		}
		first := tokens[0]
		last := tokens[len(tokens)-1]
		for _, token := range []string{first, last} {
			if token == "" {
				continue
			}
			if strings.Contains(name, token) || strings.Contains(token, name) {
				return &directory[i]
			}
		}
	}
	return nil
}
