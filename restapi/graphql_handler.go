package restapi

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func graphQLError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": []fiber.Map{{"message": msg}},
	})
}

// parseGraphQLRequest reads the operation from a POST body, or from the query
// string on GET (variables as a JSON-encoded parameter).
func parseGraphQLRequest(c *fiber.Ctx) (graphQLRequest, error) {
	var req graphQLRequest
	if c.Method() == fiber.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return req, err
			}
		}
		return req, nil
	}
	err := c.BodyParser(&req)
	return req, err
}

// GraphQLHandler serves dashboard queries against schema
func GraphQLHandler(schema graphql.Schema, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseGraphQLRequest(c)
		if err != nil {
			return graphQLError(c, "Invalid request body")
		}
		if strings.TrimSpace(req.Query) == "" {
			return graphQLError(c, "Query is required")
		}

		if req.OperationName != "" {
			c.Locals("graphql_op", req.OperationName)
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		if result.HasErrors() {
			logger.Debug("GraphQL request returned errors",
				zap.String("operation", req.OperationName), zap.Int("errors", len(result.Errors)))
		}

		return c.JSON(result)
	}
}
