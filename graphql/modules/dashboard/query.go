// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
)

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(svc *services.DashboardService) graphql.Fields {
	return graphql.Fields{
		// Top cards
		"dashboardOverview": &graphql.Field{
			Type: DashboardOverviewType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(contextOf(p), svc)
			},
		},
		"bloodStockSummary": &graphql.Field{
			Type: BloodStockSummaryType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveBloodStockSummary(contextOf(p), svc)
			},
		},
		// Audit panel
		"auditStats": &graphql.Field{
			Type: AuditStatsType,
			Args: graphql.FieldConfigArgument{
				"dateFrom": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"dateTo":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				dateFrom, _ := p.Args["dateFrom"].(string)
				dateTo, _ := p.Args["dateTo"].(string)
				return ResolveAuditStats(contextOf(p), svc, dateFrom, dateTo)
			},
		},
		"recentActivity": &graphql.Field{
			Type: RecentActivityType,
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit, _ := p.Args["limit"].(int)
				return ResolveRecentActivity(contextOf(p), svc, limit)
			},
		},
		"hospitalRequestSummary": &graphql.Field{
			Type: HospitalRequestSummaryType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveHospitalRequestSummary(contextOf(p), svc)
			},
		},
	}
}
