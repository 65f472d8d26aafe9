package handler

// savePreviewRequest carries the OCR draft and its session correlation.
type savePreviewRequest struct {
	SDKToken  string         `json:"sdkToken"`
	RequestID string         `json:"requestId"`
	OCRData   map[string]any `json:"ocrData"`
}

// resultRequest identifies the session whose verdict should be fetched.
type resultRequest struct {
	SDKToken string `json:"sdkToken"`
}
