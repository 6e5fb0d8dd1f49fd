package macro

import "github.com/Denosadchiy/travel-buddy-ai/internal/schema"

// skeletonSchema is the contract every generative skeleton payload must
// satisfy before it is decoded. Times are integer minutes-of-day.
var skeletonSchema = schema.JSONSchema{
	Type:     "object",
	Required: []string{"days"},
	Properties: map[string]schema.Field{
		"days": {
			Type: "array",
			Items: &schema.Field{
				Type:     "object",
				Required: []string{"day_index", "blocks"},
				Properties: map[string]schema.Field{
					"day_index": {Type: "integer", Minimum: schema.Float(0)},
					"theme":     {Type: "string"},
					"blocks": {
						Type:     "array",
						MinItems: schema.Int(1),
						Items: &schema.Field{
							Type:     "object",
							Required: []string{"type", "window"},
							Properties: map[string]schema.Field{
								"type": {
									Type: "string",
									Enum: []string{"meal", "activity", "nightlife", "rest"},
								},
								"theme": {Type: "string"},
								"categories": {
									Type:  "array",
									Items: &schema.Field{Type: "string"},
								},
								"window": {
									Type:     "object",
									Required: []string{"start", "end"},
									Properties: map[string]schema.Field{
										"start": {Type: "integer", Minimum: schema.Float(0), Maximum: schema.Float(1440)},
										"end":   {Type: "integer", Minimum: schema.Float(0), Maximum: schema.Float(1440)},
									},
								},
								"duration_min": {Type: "integer", Minimum: schema.Float(0)},
							},
						},
					},
				},
			},
		},
	},
}

// skeletonPayload mirrors skeletonSchema for strict decoding after the
// schema check passes.
type skeletonPayload struct {
	Days []payloadDay `json:"days"`
}

type payloadDay struct {
	DayIndex int            `json:"day_index"`
	Theme    string         `json:"theme"`
	Blocks   []payloadBlock `json:"blocks"`
}

type payloadBlock struct {
	Type       string        `json:"type"`
	Theme      string        `json:"theme"`
	Categories []string      `json:"categories"`
	Window     payloadWindow `json:"window"`
	Duration   int           `json:"duration_min"`
}

type payloadWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
