package memory

import (
	"strings"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
)

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchOrg(o *model.Organization, f store.OrgFilter) bool {
	if f.Type != "" && o.Type != f.Type {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.City != "" && !containsFold(o.City, f.City) {
		return false
	}
	if f.State != "" && !containsFold(o.State, f.State) {
		return false
	}
	if !f.Range.Contains(o.CreatedAt) {
		return false
	}
	if f.Search != "" {
		for _, v := range []string{o.Name, o.Email, o.OrganizationCode, o.City, o.Phone} {
			if containsFold(v, f.Search) {
				return true
			}
		}
		return false
	}
	return true
}

func matchAudit(e *model.AuditLog, f store.AuditFilter) bool {
	switch {
	case f.EntityType != "" && e.EntityType != f.EntityType:
		return false
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.PerformedBy != "" && e.PerformedBy != f.PerformedBy:
		return false
	case f.PerformedByRole != "" && e.PerformedByRole != f.PerformedByRole:
		return false
	case f.Status != "" && e.Status != f.Status:
		return false
	case f.EntityCode != "" && e.EntityCode != f.EntityCode:
		return false
	}
	return f.Range.Contains(e.Timestamp)
}
