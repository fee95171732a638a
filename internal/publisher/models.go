package publisher

// Destination property names in the workspace database.
const (
	PropRole         = "Role"
	PropStartup      = "Startup"
	PropApplyURL     = "Apply URL"
	PropSummary      = "Summary"
	PropLocation     = "Location"
	PropRemote       = "Remote"
	PropOriginalFile = "Original file"
)

// PageRequest is the body of a create-page call.
type PageRequest struct {
	Properties map[string]any `json:"properties"`
	Parent     Parent         `json:"parent"`
}

// Parent identifies the destination database.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// Text holds the literal content of a rich text segment.
type Text struct {
	Content string `json:"content"`
}

// RichText is one segment of formatted text.
type RichText struct {
	Text Text   `json:"text"`
	Type string `json:"type"`
}

// TitleProperty is the database's title column.
type TitleProperty struct {
	Title []RichText `json:"title"`
}

// RichTextProperty is a plain text column.
type RichTextProperty struct {
	RichText []RichText `json:"rich_text"`
}

// URLProperty is a link column; nil clears it.
type URLProperty struct {
	URL *string `json:"url"`
}

// SelectOption names one option of a select column.
type SelectOption struct {
	Name string `json:"name"`
}

// SelectProperty is a single-select column; nil clears it.
type SelectProperty struct {
	Select *SelectOption `json:"select"`
}

// Page is the subset of a created page the publisher needs.
type Page struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	URL    string `json:"url"`
}

// APIError is the error body returned by the workspace API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
