package cortex

import "github.com/killallgit/cortex-chat/pkg/config"

// Tool names and types declared on every request
const (
	ToolSupplyChain    = "supply_chain"
	ToolSupport        = "support"
	ToolVehiclesSearch = "vehicles_info_search"

	ToolTypeTextToSQL = "cortex_analyst_text_to_sql"
	ToolTypeSearch    = "cortex_search"

	// DefaultSearchLimit is used when no search result limit is given
	DefaultSearchLimit = 10
)

// RunRequest is the agent:run request payload
type RunRequest struct {
	Model         string                  `json:"model"`
	Messages      []Message               `json:"messages"`
	Tools         []Tool                  `json:"tools"`
	ToolResources map[string]ToolResource `json:"tool_resources"`
}

// Message is a single conversational message of the request
type Message struct {
	Role    string        `json:"role"`
	Content []MessagePart `json:"content"`
}

// MessagePart is one structured content item of a message
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Tool declares a callable tool
type Tool struct {
	ToolSpec ToolSpec `json:"tool_spec"`
}

// ToolSpec names a tool and its type
type ToolSpec struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ToolResource binds a tool to its backing resource. Text-to-SQL tools set
// SemanticModelFile; the search tool sets the remaining fields.
type ToolResource struct {
	SemanticModelFile string `json:"semantic_model_file,omitempty"`
	Name              string `json:"name,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	TitleColumn       string `json:"title_column,omitempty"`
	IDColumn          string `json:"id_column,omitempty"`
}

// NewRunRequest builds the request for a single user query. limit bounds the
// number of search results; a non-positive limit uses DefaultSearchLimit.
func NewRunRequest(model, query string, resources config.ResourcesConfig, limit int) RunRequest {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	return RunRequest{
		Model: model,
		Messages: []Message{{
			Role:    "user",
			Content: []MessagePart{{Type: "text", Text: query}},
		}},
		Tools: []Tool{
			{ToolSpec: ToolSpec{Type: ToolTypeTextToSQL, Name: ToolSupplyChain}},
			{ToolSpec: ToolSpec{Type: ToolTypeTextToSQL, Name: ToolSupport}},
			{ToolSpec: ToolSpec{Type: ToolTypeSearch, Name: ToolVehiclesSearch}},
		},
		ToolResources: map[string]ToolResource{
			ToolSupplyChain: {SemanticModelFile: resources.SupplyChainSemanticModel},
			ToolSupport:     {SemanticModelFile: resources.SupportTicketsSemanticModel},
			ToolVehiclesSearch: {
				Name:        resources.SearchService,
				MaxResults:  limit,
				TitleColumn: resources.SearchTitleColumn,
				IDColumn:    resources.SearchIDColumn,
			},
		},
	}
}
