// Package dashboard defines the GraphQL types for the administration dashboard.
package dashboard

import (
	"encoding/json"

	"github.com/graphql-go/graphql"

	"github.com/Premkambaliya/Hack-The-Winter/model"
)

// CountEntryType is one bucket of a grouped count
var CountEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CountEntry",
	Fields: graphql.Fields{
		"key":   &graphql.Field{Type: graphql.String},
		"count": &graphql.Field{Type: graphql.Int},
	},
})

// DashboardOverviewType represents the blood bank counts for the top cards
var DashboardOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total":    &graphql.Field{Type: graphql.Int},
		"byStatus": &graphql.Field{Type: graphql.NewList(CountEntryType)},
	},
})

// BloodGroupUnitsType is the unit count of one blood group
var BloodGroupUnitsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BloodGroupUnits",
	Fields: graphql.Fields{
		"bloodGroup": &graphql.Field{Type: graphql.String},
		"units":      &graphql.Field{Type: graphql.Int},
	},
})

// BloodStockSummaryType totals stock across approved blood banks
var BloodStockSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "BloodStockSummary",
	Fields: graphql.Fields{
		"bloodBanks": &graphql.Field{Type: graphql.Int},
		"totalUnits": &graphql.Field{Type: graphql.Int},
		"byGroup":    &graphql.Field{Type: graphql.NewList(BloodGroupUnitsType)},
	},
})

// AuditStatsType aggregates the audit trail
var AuditStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditStats",
	Fields: graphql.Fields{
		"total":        &graphql.Field{Type: graphql.Int},
		"byAction":     &graphql.Field{Type: graphql.NewList(CountEntryType)},
		"byEntityType": &graphql.Field{Type: graphql.NewList(CountEntryType)},
		"byStatus":     &graphql.Field{Type: graphql.NewList(CountEntryType)},
		"byRole":       &graphql.Field{Type: graphql.NewList(CountEntryType)},
		"dateFrom":     &graphql.Field{Type: graphql.DateTime},
		"dateTo":       &graphql.Field{Type: graphql.DateTime},
	},
})

// AuditLogType is a single audit entry
var AuditLogType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditLog",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.String},
		"entityType":      &graphql.Field{Type: graphql.String},
		"entityCode":      &graphql.Field{Type: graphql.String},
		"entityId":        &graphql.Field{Type: graphql.String},
		"action":          &graphql.Field{Type: graphql.String},
		"performedBy":     &graphql.Field{Type: graphql.String},
		"performedByRole": &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
		"timestamp":       &graphql.Field{Type: graphql.DateTime},
		// details is free-form, so it is returned as a JSON string
		"details": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				entry, ok := p.Source.(*model.AuditLog)
				if !ok || len(entry.Details) == 0 {
					return nil, nil
				}
				raw, err := json.Marshal(entry.Details)
				if err != nil {
					return nil, err
				}
				return string(raw), nil
			},
		},
	},
})

// RecentActivityType is the newest audit entries
var RecentActivityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RecentActivity",
	Fields: graphql.Fields{
		"logs":  &graphql.Field{Type: graphql.NewList(AuditLogType)},
		"count": &graphql.Field{Type: graphql.Int},
	},
})

// HospitalRequestSummaryType counts hospital requests
var HospitalRequestSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HospitalRequestSummary",
	Fields: graphql.Fields{
		"total":     &graphql.Field{Type: graphql.Int},
		"byStatus":  &graphql.Field{Type: graphql.NewList(CountEntryType)},
		"byUrgency": &graphql.Field{Type: graphql.NewList(CountEntryType)},
	},
})
