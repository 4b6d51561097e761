// Package sage provides an HTTP client for the Sage video analysis API.
package sage

import "encoding/json"

// Source points a Sage request at an object-storage object.
type Source struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// s3Source builds the fixed S3 source envelope for a storage key.
func s3Source(key string) Source {
	return Source{Type: "S3", URI: key}
}

// processRequest is the request envelope shared by all Sage submissions.
type processRequest struct {
	ID              string `json:"id"`
	Src             Source `json:"src"`
	Title           string `json:"title,omitempty"`
	WebhookEndpoint string `json:"webhook_endpoint,omitempty"`
}

// response carries the success flag present on every Sage response.
type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// VideoInfo describes an uploaded video's dimensions and duration.
type VideoInfo struct {
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	FPS        int   `json:"fps"`
	DurationMS int64 `json:"duration_ms"`
}

// videoInfoResponse is the response from POST /api/video_info.
type videoInfoResponse struct {
	response
	VideoInfo
}

// JobRef identifies a job created on the remote side.
type JobRef struct {
	ID     string `json:"id"`
	CallID string `json:"call_id,omitempty"`
}

// processResponse is the response from POST /api/process.
type processResponse struct {
	response
	Job JobRef `json:"job"`
}

// JobStatus is the remote job's state as reported by GET /api/status/:id.
type JobStatus struct {
	ID        string          `json:"id"`
	CallID    string          `json:"call_id,omitempty"`
	Completed bool            `json:"completed"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// statusResponse is the response from GET /api/status/:id.
type statusResponse struct {
	response
	JobStatus
}

// Clip is one segment cut from the source video by the analysis.
type Clip struct {
	ID          int                `json:"id"`
	Title       string             `json:"title"`
	Duration    float64            `json:"duration"`
	Timeranges  [][2]float64       `json:"timeranges,omitempty"`
	File        Source             `json:"file"`
	PreviewFile Source             `json:"preview_file"`
	FrameData   []json.RawMessage  `json:"frame_data,omitempty"`
	SpeechData  []json.RawMessage  `json:"speech_data,omitempty"`
}

// FailureReasonTooLong is reported when the source video exceeds the
// remote processing limit.
const FailureReasonTooLong = "TOO_LONG"

// VideoResult is the final analysis output for a video.
type VideoResult struct {
	ID            string `json:"id"`
	OriginalFile  Source `json:"original_file"`
	Clips         []Clip `json:"clips"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// resultResponse is the response from GET /api/results/:id.
type resultResponse struct {
	response
	VideoResult
}
