// Package arango is the ArangoDB record store. Every query is built here as AQL
// text plus bind variables; user input only ever travels as a bind variable.
package arango

import (
	"fmt"
	"strings"

	"github.com/Premkambaliya/Hack-The-Winter/database"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Query is AQL text with its bind variables
type Query struct {
	Text     string
	BindVars map[string]interface{}
}

type builder struct {
	alias   string
	filters []string
	vars    map[string]interface{}
}

func newBuilder(alias string) *builder {
	return &builder{alias: alias, vars: map[string]interface{}{}}
}

func (b *builder) bind(name string, value interface{}) string {
	b.vars[name] = value
	return "@" + name
}

func (b *builder) field(name string) string {
	return b.alias + "." + name
}

func (b *builder) equals(field, name string, value interface{}) {
	b.filters = append(b.filters, fmt.Sprintf("%s == %s", b.field(field), b.bind(name, value)))
}

func (b *builder) contains(field, name, value string) {
	b.filters = append(b.filters, fmt.Sprintf("CONTAINS(LOWER(%s), %s)", b.field(field), b.bind(name, strings.ToLower(value))))
}

// timeRange compares as epoch milliseconds; stored times are ISO 8601 strings.
func (b *builder) timeRange(field string, r util.TimeRange) {
	if r.From != nil {
		b.filters = append(b.filters, fmt.Sprintf("DATE_TIMESTAMP(%s) >= %s", b.field(field), b.bind("dateFrom", r.From.UnixMilli())))
	}
	if r.To != nil {
		b.filters = append(b.filters, fmt.Sprintf("DATE_TIMESTAMP(%s) < %s", b.field(field), b.bind("dateTo", r.To.UnixMilli())))
	}
}

func (b *builder) filterLines(indent string) string {
	var sb strings.Builder
	for _, f := range b.filters {
		sb.WriteString(indent)
		sb.WriteString("FILTER ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	return sb.String()
}

func orgFilters(f store.OrgFilter) *builder {
	b := newBuilder("o")
	b.equals("type", "type", f.Type)
	if f.Status != "" {
		b.equals("status", "status", string(f.Status))
	}
	if f.City != "" {
		b.contains("city", "city", f.City)
	}
	if f.State != "" {
		b.contains("state", "state", f.State)
	}
	b.timeRange("createdAt", f.Range)
	if f.Search != "" {
		term := b.bind("search", strings.ToLower(f.Search))
		clauses := make([]string, len(store.SearchFields))
		for i, field := range store.SearchFields {
			clauses[i] = fmt.Sprintf("CONTAINS(LOWER(%s), %s)", b.field(field), term)
		}
		b.filters = append(b.filters, "("+strings.Join(clauses, " OR ")+")")
	}
	return b
}

func auditFilters(f store.AuditFilter) *builder {
	b := newBuilder("l")
	if f.EntityType != "" {
		b.equals("entityType", "entityType", string(f.EntityType))
	}
	if f.Action != "" {
		b.equals("action", "action", string(f.Action))
	}
	if f.PerformedBy != "" {
		b.equals("performedBy", "performedBy", f.PerformedBy)
	}
	if f.PerformedByRole != "" {
		b.equals("performedByRole", "performedByRole", f.PerformedByRole)
	}
	if f.Status != "" {
		b.equals("status", "status", f.Status)
	}
	if f.EntityCode != "" {
		b.equals("entityCode", "entityCode", f.EntityCode)
	}
	b.timeRange("timestamp", f.Range)
	return b
}

// pagedQuery wraps filtered results as a single {total, items} document so the
// count and the page come from the same snapshot.
func pagedQuery(b *builder, collection, sortField string, page util.PageRequest) Query {
	text := fmt.Sprintf(`LET matched = (
	FOR %[1]s IN %[2]s
%[3]s		RETURN %[1]s
)
RETURN {
	total: LENGTH(matched),
	items: (
		FOR %[1]s IN matched
			SORT DATE_TIMESTAMP(%[1]s.%[4]s) DESC, %[1]s._key DESC
			LIMIT @offset, @count
			RETURN MERGE(%[1]s, { _id: %[1]s._key })
	)
}`, b.alias, collection, b.filterLines("\t\t"), sortField)

	b.bind("offset", page.Offset())
	b.bind("count", page.Limit)
	return Query{Text: text, BindVars: b.vars}
}

// ListOrganizationsQuery builds the filtered, paginated organization listing
func ListOrganizationsQuery(f store.OrgFilter, page util.PageRequest) Query {
	return pagedQuery(orgFilters(f), database.OrganizationsCollection, "createdAt", page)
}

// ListAuditQuery builds the filtered, paginated audit listing
func ListAuditQuery(f store.AuditFilter, page util.PageRequest) Query {
	return pagedQuery(auditFilters(f), database.AuditLogsCollection, "timestamp", page)
}

// AuditStatsQuery groups audit entries within the window
func AuditStatsQuery(window util.TimeRange) Query {
	b := newBuilder("l")
	b.timeRange("timestamp", window)

	group := func(field string) string {
		return fmt.Sprintf("(FOR l IN logs COLLECT k = l.%s WITH COUNT INTO n RETURN { key: k, count: n })", field)
	}
	text := fmt.Sprintf(`LET logs = (
	FOR l IN %s
%s		RETURN l
)
RETURN {
	total: LENGTH(logs),
	byAction: %s,
	byEntityType: %s,
	byStatus: %s,
	byRole: %s
}`, database.AuditLogsCollection, b.filterLines("\t\t"),
		group("action"), group("entityType"), group("status"), group("performedByRole"))

	return Query{Text: text, BindVars: b.vars}
}

// RecentAuditQuery returns the newest entries
func RecentAuditQuery(limit int) Query {
	return Query{
		Text: fmt.Sprintf(`FOR l IN %s
	SORT DATE_TIMESTAMP(l.timestamp) DESC, l._key DESC
	LIMIT @count
	RETURN MERGE(l, { _id: l._key })`, database.AuditLogsCollection),
		BindVars: map[string]interface{}{"count": limit},
	}
}

// FindAuditQuery looks up one audit entry by key
func FindAuditQuery(key string) Query {
	return Query{
		Text: fmt.Sprintf(`FOR l IN %s
	FILTER l._key == @key
	LIMIT 1
	RETURN MERGE(l, { _id: l._key })`, database.AuditLogsCollection),
		BindVars: map[string]interface{}{"key": key},
	}
}

// FindOrganizationQuery looks up one organization by a single field within its type
func FindOrganizationQuery(orgType, field, value string) Query {
	return Query{
		Text: fmt.Sprintf(`FOR o IN %s
	FILTER o.@field == @value AND o.type == @type
	LIMIT 1
	RETURN MERGE(o, { _id: o._key })`, database.OrganizationsCollection),
		BindVars: map[string]interface{}{"field": field, "value": value, "type": orgType},
	}
}

// CountByStatusQuery counts organizations of a type per status
func CountByStatusQuery(orgType string) Query {
	return Query{
		Text: fmt.Sprintf(`FOR o IN %s
	FILTER o.type == @type
	COLLECT k = o.status WITH COUNT INTO n
	RETURN { key: k, count: n }`, database.OrganizationsCollection),
		BindVars: map[string]interface{}{"type": orgType},
	}
}

// CountCodePrefixQuery counts organization codes with a prefix
func CountCodePrefixQuery(orgType, prefix string) Query {
	return Query{
		Text: fmt.Sprintf(`RETURN LENGTH(
	FOR o IN %s
		FILTER o.type == @type AND STARTS_WITH(o.organizationCode, @prefix)
		RETURN 1
)`, database.OrganizationsCollection),
		BindVars: map[string]interface{}{"type": orgType, "prefix": prefix},
	}
}

// CreateOrganizationQuery inserts the organization and its audit entry in one query
func CreateOrganizationQuery(org *model.Organization, entry *model.AuditLog) Query {
	return Query{
		Text: fmt.Sprintf(`LET org = FIRST(INSERT @doc INTO %s RETURN NEW)
LET audit = FIRST(INSERT MERGE(@audit, { entityId: org._key }) INTO %s RETURN NEW._key)
RETURN { key: org._key, auditId: audit }`, database.OrganizationsCollection, database.AuditLogsCollection),
		BindVars: map[string]interface{}{"doc": org, "audit": entry},
	}
}

// UpdateOrganizationQuery applies patch only while the stored status equals expected,
// and inserts the audit entry only when the update happened.
// A null patch value removes the attribute.
func UpdateOrganizationQuery(orgType, key string, expected model.Status, patch store.Patch, entry *model.AuditLog) Query {
	return Query{
		Text: fmt.Sprintf(`LET doc = DOCUMENT(%[1]s, @key)
LET found = doc != null AND doc.type == @type
LET updated = (
	FOR o IN %[1]s
		FILTER o._key == @key AND o.type == @type AND o.status == @expected
		UPDATE o WITH @patch IN %[1]s OPTIONS { keepNull: false }
		RETURN NEW
)
LET audit = (
	FOR n IN updated
		INSERT MERGE(@audit, { entityId: n._key }) INTO %[2]s
		RETURN NEW._key
)
RETURN {
	found: found,
	doc: LENGTH(updated) > 0 ? MERGE(updated[0], { _id: updated[0]._key }) : null,
	auditId: FIRST(audit)
}`, database.OrganizationsCollection, database.AuditLogsCollection),
		BindVars: map[string]interface{}{
			"key":      key,
			"type":     orgType,
			"expected": string(expected),
			"patch":    patch,
			"audit":    entry,
		},
	}
}

// DeleteOrganizationQuery removes the organization and inserts the audit entry in one query
func DeleteOrganizationQuery(orgType, key string, entry *model.AuditLog) Query {
	return Query{
		Text: fmt.Sprintf(`LET removed = (
	FOR o IN %[1]s
		FILTER o._key == @key AND o.type == @type
		REMOVE o IN %[1]s
		RETURN OLD._key
)
LET audit = (
	FOR k IN removed
		INSERT MERGE(@audit, { entityId: k }) INTO %[2]s
		RETURN NEW._key
)
RETURN { found: LENGTH(removed) > 0, auditId: FIRST(audit) }`, database.OrganizationsCollection, database.AuditLogsCollection),
		BindVars: map[string]interface{}{"key": key, "type": orgType, "audit": entry},
	}
}

// ListRequestsQuery lists the hospital requests addressed to a blood bank
func ListRequestsQuery(bloodBankID string) Query {
	return Query{
		Text: fmt.Sprintf(`FOR r IN %s
	FILTER r.bloodBankId == @bank
	SORT DATE_TIMESTAMP(r.createdAt) DESC
	RETURN MERGE(r, { _id: r._key })`, database.HospitalRequestsCollection),
		BindVars: map[string]interface{}{"bank": bloodBankID},
	}
}

// RequestSummaryQuery counts hospital requests by status and urgency
func RequestSummaryQuery() Query {
	return Query{
		Text: fmt.Sprintf(`LET reqs = (FOR r IN %s RETURN r)
RETURN {
	total: LENGTH(reqs),
	byStatus: (FOR r IN reqs COLLECT k = r.status WITH COUNT INTO n RETURN { key: k, count: n }),
	byUrgency: (FOR r IN reqs COLLECT k = r.urgency WITH COUNT INTO n RETURN { key: k, count: n })
}`, database.HospitalRequestsCollection),
		BindVars: map[string]interface{}{},
	}
}
