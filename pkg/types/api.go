package types

// ChatMessage is a single turn in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
// Unknown fields sent by real clients are ignored during decoding so the
// fixture accepts whatever an SDK adds over time.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
}

// ChatCompletionChoice is one generated alternative.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse is the non-streaming chat completion payload.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   Usage                  `json:"usage"`
}

// Usage contains token accounting for a single request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponsesRequest is the body of POST /v1/responses. Input is either a
// plain string or a list of input messages.
type ResponsesRequest struct {
	Model           string      `json:"model"`
	Input           interface{} `json:"input"`
	Instructions    string      `json:"instructions,omitempty"`
	MaxOutputTokens int         `json:"max_output_tokens,omitempty"`
	Temperature     float64     `json:"temperature,omitempty"`
}

// ResponseOutputText is the inner text content of a response output item.
type ResponseOutputText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResponseOutputMessage is a single output item of a response object.
type ResponseOutputMessage struct {
	ID      string               `json:"id"`
	Type    string               `json:"type"`
	Role    string               `json:"role"`
	Status  string               `json:"status"`
	Content []ResponseOutputText `json:"content"`
}

// ResponsesResponse is the response object returned by /v1/responses.
type ResponsesResponse struct {
	ID        string                  `json:"id"`
	Object    string                  `json:"object"`
	CreatedAt int64                   `json:"created_at"`
	Status    string                  `json:"status"`
	Model     string                  `json:"model"`
	Output    []ResponseOutputMessage `json:"output"`
	Usage     ResponseUsage           `json:"usage"`
}

// ResponseUsage mirrors Usage with the field names the responses API uses.
type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Model is one entry of the GET /v1/models listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the OpenAI list wrapper for GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// APIError is the error detail object inside an ErrorResponse.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// ErrorResponse is the OpenAI-shaped error envelope returned for all
// client-facing failures.
type ErrorResponse struct {
	Error APIError `json:"error"`
}
