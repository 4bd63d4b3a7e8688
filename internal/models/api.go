package models

// RegisterRequest is the body of POST /api/v1/register.
type RegisterRequest struct {
	Text string `json:"text"`
}

// RegisterResponse is the reply to a register request.
type RegisterResponse struct {
	DocumentID int64 `json:"document_id"`
}

// SearchRequest is the body of POST /api/v1/search. TopK defaults to the
// configured value when zero or omitted.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// SearchResponse is the reply to a search request. Sources are the ranked
// documents the answer was grounded on, highest similarity first.
type SearchResponse struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
}

// DocumentsResponse is the reply to GET /api/v1/documents. Documents is set
// in list mode, Clusters in cluster mode; Total is the full document count
// in list mode and the total member count in cluster mode.
type DocumentsResponse struct {
	Total     int               `json:"total"`
	Documents []DocumentSummary `json:"documents,omitempty"`
	Clusters  []Cluster         `json:"clusters,omitempty"`
}

// ErrorResponse is the body of any non-2xx API reply. Code is a stable
// machine-readable identifier; Message is human-readable.
type ErrorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}
