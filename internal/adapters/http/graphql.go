package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/medispecs/medispecs-api/internal/core/domain"
	"github.com/medispecs/medispecs-api/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Every field
// is a read mirroring the REST endpoint of the same name.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	medicationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Medication",
		Fields: graphql.Fields{
			"medicationId":     &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"time":             &graphql.Field{Type: graphql.String},
			"frequency":        &graphql.Field{Type: graphql.String},
			"frequencyDetails": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"notes":            &graphql.Field{Type: graphql.String},
			"photoUrl":         &graphql.Field{Type: graphql.String},
		},
	})

	familyMemberType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FamilyMember",
		Fields: graphql.Fields{
			"familyMemberId": &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"relationship":   &graphql.Field{Type: graphql.String},
			"photoUrl":       &graphql.Field{Type: graphql.String},
			"faceId":         &graphql.Field{Type: graphql.String},
		},
	})

	deviceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Device",
		Fields: graphql.Fields{
			"deviceId": &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"status":   &graphql.Field{Type: graphql.String},
		},
	})

	exerciseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CognitiveExercise",
		Fields: graphql.Fields{
			"exerciseId": &graphql.Field{Type: graphql.String},
			"question":   &graphql.Field{Type: graphql.String},
			"category":   &graphql.Field{Type: graphql.String},
			"difficulty": &graphql.Field{Type: graphql.String},
		},
	})

	// Decimal-typed fields need explicit conversion; the default resolver
	// cannot coerce them to Float.
	decimalField := func(pick func(domain.LocationPoint) domain.Decimal) *graphql.Field {
		return &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				point, ok := p.Source.(domain.LocationPoint)
				if !ok {
					return nil, nil
				}
				d := pick(point)
				if d.IsZero() {
					return nil, nil
				}
				return d.Float64(), nil
			},
		}
	}

	locationPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocationPoint",
		Fields: graphql.Fields{
			"lat":       decimalField(func(p domain.LocationPoint) domain.Decimal { return p.Lat }),
			"lng":       decimalField(func(p domain.LocationPoint) domain.Decimal { return p.Lng }),
			"timestamp": &graphql.Field{Type: graphql.String},
			"accuracy":  decimalField(func(p domain.LocationPoint) domain.Decimal { return p.Accuracy }),
			"speed":     decimalField(func(p domain.LocationPoint) domain.Decimal { return p.Speed }),
		},
	})

	userArg := graphql.FieldConfigArgument{
		"userId": &graphql.ArgumentConfig{Type: graphql.String},
	}
	resolveUser := func(p graphql.ResolveParams) string {
		if id, ok := p.Args["userId"].(string); ok && id != "" {
			return id
		}
		return deps.DemoUserID
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"medications": &graphql.Field{
				Type:        graphql.NewList(medicationType),
				Description: "List the user's medications",
				Args:        userArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Medications.List(p.Context, resolveUser(p))
				},
			},
			"family": &graphql.Field{
				Type:        graphql.NewList(familyMemberType),
				Description: "List the user's family members",
				Args:        userArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Family.List(p.Context, resolveUser(p))
				},
			},
			"devices": &graphql.Field{
				Type:        graphql.NewList(deviceType),
				Description: "List registered tracking devices",
				Args:        userArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Devices.List(p.Context, resolveUser(p))
				},
			},
			"exercises": &graphql.Field{
				Type:        graphql.NewList(exerciseType),
				Description: "List cognitive exercises",
				Args:        userArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cognitive.List(p.Context, resolveUser(p))
				},
			},
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationPointType),
				Description: "Query a device's GPS history",
				Args: graphql.FieldConfigArgument{
					"deviceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":     &graphql.ArgumentConfig{Type: graphql.String},
					"fromDate": &graphql.ArgumentConfig{Type: graphql.String},
					"toDate":   &graphql.ArgumentConfig{Type: graphql.String},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 500},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := usecases.LocationQuery{
						DeviceID: p.Args["deviceId"].(string),
						Limit:    p.Args["limit"].(int),
					}
					if v, ok := p.Args["date"].(string); ok {
						q.Date = v
					}
					if v, ok := p.Args["fromDate"].(string); ok {
						q.FromDate = v
					}
					if v, ok := p.Args["toDate"].(string); ok {
						q.ToDate = v
					}
					return deps.Locations.Query(p.Context, q)
				},
			},
			"latestLocation": &graphql.Field{
				Type:        locationPointType,
				Description: "Most recent cached fix for a device",
				Args: graphql.FieldConfigArgument{
					"deviceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.Latest(p.Context, p.Args["deviceId"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
