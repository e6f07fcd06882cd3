package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var userIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "User to act for (default: the configured user)",
}

// ToolDefinitions contains all available MCP tools
var ToolDefinitions = []Tool{
	{
		Name:        "get_feed",
		Description: "Get the ranked apartment feed for a user. Listings already swiped are excluded and the best matches come first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of listings to return (default: configured feed size)",
				},
			},
		},
	},
	{
		Name:        "record_swipe",
		Description: "Record a like or pass on a listing. Learned preferences refresh at swipe milestones.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
				"listing_id": map[string]interface{}{
					"type":        "string",
					"description": "Listing that was swiped",
				},
				"liked": map[string]interface{}{
					"type":        "boolean",
					"description": "true for like, false for pass",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional swipe session UUID",
				},
			},
			"required": []string{"listing_id", "liked"},
		},
	},
	{
		Name:        "train_model",
		Description: "Train the per-user like-probability model from swipe history.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	},
	{
		Name:        "get_learned_preferences",
		Description: "Get the preferences inferred from a user's likes and passes.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	},
	{
		Name:        "suggest_weights",
		Description: "Suggest scoring weights derived from the trained model's feature importances.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	},
	{
		Name:        "explain_listing",
		Description: "Explain how a listing scores for a user, including any filter that excludes it.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
				"listing_id": map[string]interface{}{
					"type":        "string",
					"description": "Listing to explain",
				},
			},
			"required": []string{"listing_id"},
		},
	},
	{
		Name:        "get_stats",
		Description: "Get swipe counts, like ratio and model status for a user.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	},
}
