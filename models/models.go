package models

// AnalyzeImageRequest is the body accepted by POST /analyze-image.
// ImageData is either a Data-URL or a raw base64 string.
type AnalyzeImageRequest struct {
	ImageData string `json:"imageData"`
	Prompt    string `json:"prompt"`
}

// AnalyzeImageResponse is returned on success
type AnalyzeImageResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is returned on every failure path
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse is the fixed body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
