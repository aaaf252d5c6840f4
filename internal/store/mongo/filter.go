package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// substring matches value anywhere in the field, case-insensitively.
// The value is quoted so it is never interpreted as a pattern.
func substring(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func prefix(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value)}
}

func timeRange(r util.TimeRange) bson.D {
	bounds := bson.D{}
	if r.From != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: *r.From})
	}
	if r.To != nil {
		bounds = append(bounds, bson.E{Key: "$lt", Value: *r.To})
	}
	return bounds
}

// OrgFilter builds the organization list filter. Absent filters are omitted.
func OrgFilter(f store.OrgFilter) bson.D {
	filter := bson.D{{Key: "type", Value: f.Type}}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.City != "" {
		filter = append(filter, bson.E{Key: "city", Value: substring(f.City)})
	}
	if f.State != "" {
		filter = append(filter, bson.E{Key: "state", Value: substring(f.State)})
	}
	if !f.Range.Empty() {
		filter = append(filter, bson.E{Key: "createdAt", Value: timeRange(f.Range)})
	}
	if f.Search != "" {
		or := bson.A{}
		for _, field := range store.SearchFields {
			or = append(or, bson.D{{Key: field, Value: substring(f.Search)}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}
	return filter
}

// AuditFilter builds the audit list filter. Absent filters are omitted.
func AuditFilter(f store.AuditFilter) bson.D {
	filter := bson.D{}
	add := func(key, value string) {
		if value != "" {
			filter = append(filter, bson.E{Key: key, Value: value})
		}
	}
	add("entityType", string(f.EntityType))
	add("action", string(f.Action))
	add("performedBy", f.PerformedBy)
	add("performedByRole", f.PerformedByRole)
	add("status", f.Status)
	add("entityCode", f.EntityCode)
	if !f.Range.Empty() {
		filter = append(filter, bson.E{Key: "timestamp", Value: timeRange(f.Range)})
	}
	return filter
}

// PatchUpdate converts a patch to $set/$unset operators; nil values are unset.
func PatchUpdate(patch store.Patch) bson.D {
	set := bson.D{}
	unset := bson.D{}
	for k, v := range patch {
		if v == nil {
			unset = append(unset, bson.E{Key: k, Value: ""})
			continue
		}
		set = append(set, bson.E{Key: k, Value: v})
	}
	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

func groupBy(field string) bson.A {
	return bson.A{bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$" + field},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}}
}

// StatsPipeline counts audit entries per action, entity type, status and role
// within the window, in a single aggregation.
func StatsPipeline(window util.TimeRange) bson.A {
	pipeline := bson.A{}
	if !window.Empty() {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "timestamp", Value: timeRange(window)}}}})
	}
	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		{Key: "byAction", Value: groupBy("action")},
		{Key: "byEntityType", Value: groupBy("entityType")},
		{Key: "byStatus", Value: groupBy("status")},
		{Key: "byRole", Value: groupBy("performedByRole")},
	}}})
}

// RequestSummaryPipeline counts hospital requests per status and urgency
func RequestSummaryPipeline() bson.A {
	return bson.A{bson.D{{Key: "$facet", Value: bson.D{
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		{Key: "byStatus", Value: groupBy("status")},
		{Key: "byUrgency", Value: groupBy("urgency")},
	}}}}
}

// CountByStatusPipeline counts organizations of a type per status
func CountByStatusPipeline(orgType string) bson.A {
	return append(bson.A{bson.D{{Key: "$match", Value: bson.D{{Key: "type", Value: orgType}}}}}, groupBy("status")...)
}

