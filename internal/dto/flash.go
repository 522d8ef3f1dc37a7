package dto

// Flash levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// FlashResponse is what workflow endpoints return: a message for the operator
// and the route to look at next.
type FlashResponse struct {
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
	Redirect string   `json:"redirect"`
	Data     any      `json:"data,omitempty"`
}

// PageResponse wraps one page of a list.
type PageResponse struct {
	Items   any   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}
