package grapherror

import "fmt"

// defaultMessages are shown when no user message was given
var defaultMessages = map[Category]string{
	CategoryProtocol:  "The preview client sent a message the server does not understand",
	CategoryEvent:     "The visualization could not apply that action",
	CategoryWebSocket: "Connection error - attempting to reconnect...",
	CategoryBuild:     "The visualization could not be built from its data",
	CategoryInternal:  "An internal error occurred - please try again",
}

// ToUIMessage returns the message to show the client.
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// Message is the error frame sent over the preview socket.
type Message struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Error       string `json:"error"`
	Description string `json:"description"`
	Instance    string `json:"instance,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// ToMessage formats the error for the client. The instance context, when set,
// names the visualization the error belongs to.
func (e *GraphError) ToMessage() Message {
	m := Message{
		Type:        "error",
		Category:    string(e.Category),
		Subcategory: e.Subcategory,
		Error:       e.Error(),
		Description: e.ToUIMessage(),
		Timestamp:   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if id, ok := e.Context["instance"]; ok {
		m.Instance = fmt.Sprint(id)
	}
	return m
}

// ToLogFields converts error to structured log fields
// This is useful for passing to logger.Errorw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}

	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// IsCategory checks if the error matches a specific category
func (e *GraphError) IsCategory(cat Category) bool {
	return e.Category == cat
}
