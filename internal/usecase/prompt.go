package usecase

import (
	"encoding/json"
	"strings"

	"handycan-agent/internal/domain"
)

func buildPromptMessages(storeID string, history []domain.ChatMessage, message string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: buildSystemPrompt(storeID),
	})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: message,
	})
	return messages
}

// buildSystemPrompt is a pure function of the store identifier.
func buildSystemPrompt(storeID string) string {
	storeContext := strings.TrimSpace(storeID)
	if storeContext == "" {
		storeContext = "General hardware store"
	}
	return strings.Join([]string{
		"You are HandyCan, a helpful hardware store assistant AI. You help customers with:",
		"",
		"1. Project guidance (installation, repairs, building)",
		"2. Tool and material recommendations",
		"3. Product information and availability",
		"4. Step-by-step instructions",
		"5. Compatibility checking",
		"",
		"IMPORTANT GUIDELINES:",
		"- Always be helpful, friendly, and encouraging",
		"- Ask clarifying questions to better understand their needs",
		"- Recommend specific products when appropriate",
		"- Provide step-by-step guidance for complex projects",
		"- Consider safety and best practices",
		"- If you need product information, use the search_products tool",
		"- If you need project guidance, use the get_project_guide tool",
		"- If checking compatibility, use the check_compatibility tool",
		"",
		"Current store context: " + storeContext,
		"",
		"Be conversational and supportive. Remember that many customers may be DIY beginners.",
	}, "\n")
}

// toolSchemas declares the fixed set of tools the model may call.
func toolSchemas() []domain.ToolSchema {
	return []domain.ToolSchema{
		{
			Type: "function",
			Function: domain.FunctionSchema{
				Name:        domain.ToolSearchProducts,
				Description: "Search for products in the store inventory",
				Parameters: json.RawMessage(`{
					"type":"object",
					"properties":{
						"query":{"type":"string","description":"Search query for products"},
						"category":{"type":"string","description":"Product category to filter by"}
					},
					"required":["query"]
				}`),
			},
		},
		{
			Type: "function",
			Function: domain.FunctionSchema{
				Name:        domain.ToolGetProjectGuide,
				Description: "Get step-by-step guide for a specific project",
				Parameters: json.RawMessage(`{
					"type":"object",
					"properties":{
						"projectType":{"type":"string","description":"Type of project (e.g., faucet_installation, deck_building)"},
						"difficulty":{"type":"string","enum":["BEGINNER","INTERMEDIATE","ADVANCED"],"description":"Difficulty level"}
					},
					"required":["projectType"]
				}`),
			},
		},
		{
			Type: "function",
			Function: domain.FunctionSchema{
				Name:        domain.ToolCheckCompatibility,
				Description: "Check if two products are compatible with each other",
				Parameters: json.RawMessage(`{
					"type":"object",
					"properties":{
						"productA":{"type":"string","description":"First product name or SKU"},
						"productB":{"type":"string","description":"Second product name or SKU"}
					},
					"required":["productA","productB"]
				}`),
			},
		},
	}
}
