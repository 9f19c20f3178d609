package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/panoplace/internal/adapters/valkey"
	"github.com/samirrijal/panoplace/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	displayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Display",
		Fields: graphql.Fields{
			"text":       &graphql.Field{Type: graphql.String},
			"status":     &graphql.Field{Type: graphql.String},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	resolutionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Resolution",
		Fields: graphql.Fields{
			"time":       &graphql.Field{Type: graphql.DateTime},
			"coordinate": &graphql.Field{Type: coordinateType},
			"place":      &graphql.Field{Type: graphql.String},
			"source":     &graphql.Field{Type: graphql.String},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"place":      &graphql.Field{Type: graphql.String},
			"source":     &graphql.Field{Type: graphql.String},
			"coordinate": &graphql.Field{Type: coordinateType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"display": &graphql.Field{
				Type:        displayType,
				Description: "Current overlay display tuple",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Cache == nil {
						return defaultDisplayMap(), nil
					}
					data, err := deps.Cache.Get(p.Context, valkey.DisplayKey)
					if err != nil {
						return defaultDisplayMap(), nil
					}
					var d domain.Display
					if err := json.Unmarshal(data, &d); err != nil {
						return defaultDisplayMap(), nil
					}
					return map[string]interface{}{
						"text": d.Text, "status": string(d.Status), "updated_at": d.UpdatedAt,
					}, nil
				},
			},
			"history": &graphql.Field{
				Type:        graphql.NewList(resolutionType),
				Description: "Recent successful resolutions",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.History == nil {
						return []domain.Resolution{}, nil
					}
					limit, _ := p.Args["limit"].(int)
					if limit <= 0 || limit > 500 {
						limit = 50
					}
					return deps.History.ListRecent(p.Context, limit)
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Resolve a coordinate to a place name, cache-first",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat, _ := p.Args["lat"].(float64)
					lng, _ := p.Args["lng"].(float64)
					coord := domain.Coordinate{Lat: lat, Lng: lng}
					if !coord.Valid() {
						return nil, fmt.Errorf("coordinate out of range")
					}

					if entry, ok := deps.Places.Lookup(p.Context, coord); ok {
						return map[string]interface{}{
							"place": entry.Name, "source": domain.SourceCache, "coordinate": coord,
						}, nil
					}

					res, err := deps.Geocoder.Reverse(p.Context, lat, lng)
					if err != nil {
						return nil, err
					}
					name := res.PlaceName()
					if domain.IsPlaceholderName(name) {
						return nil, fmt.Errorf("no place details for this coordinate")
					}
					deps.Places.Store(p.Context, coord, name)
					return map[string]interface{}{
						"place": name, "source": domain.SourceNetwork, "coordinate": coord,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func defaultDisplayMap() map[string]interface{} {
	return map[string]interface{}{
		"text":   domain.TextUnavailable,
		"status": string(domain.StatusDisconnected),
	}
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves POST /graphql.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)

	return func(c *fiber.Ctx) error {
		if err != nil {
			return errInternal(c, "graphql schema: "+err.Error())
		}

		var req graphqlRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid GraphQL request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			OperationName:  req.OperationName,
			VariableValues: req.Variables,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
