// Package graphql assembles the dashboard GraphQL schema.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/Premkambaliya/Hack-The-Winter/graphql/modules/dashboard"
	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
)

// CreateSchema builds the root schema from the dashboard queries.
func CreateSchema(svc *services.DashboardService) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range dashboard.GetQueryFields(svc) {
		fields[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}
