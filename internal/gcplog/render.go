package gcplog

import (
	"encoding/json"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"google.golang.org/protobuf/types/known/structpb"
)

const noEntriesMessage = "No log entries found matching the filter."

// renderedEntry is the reduced view of a log entry handed to the model:
// just the fields that matter for debugging, in a stable JSON shape.
type renderedEntry struct {
	Timestamp   string           `json:"timestamp,omitempty"`
	Severity    string           `json:"severity"`
	Resource    renderedResource `json:"resource"`
	TextPayload string           `json:"text_payload,omitempty"`
	Payload     map[string]any   `json:"payload,omitempty"`
	HTTPRequest *renderedRequest `json:"http_request,omitempty"`
}

type renderedResource struct {
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels,omitempty"`
}

type renderedRequest struct {
	Method       string `json:"method,omitempty"`
	URL          string `json:"url,omitempty"`
	Status       int    `json:"status,omitempty"`
	ResponseSize int64  `json:"response_size,omitempty"`
}

func renderEntries(entries []*logging.Entry) string {
	if len(entries) == 0 {
		return noEntriesMessage
	}
	out := make([]renderedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, renderEntry(e))
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return string(b)
}

func renderEntry(e *logging.Entry) renderedEntry {
	r := renderedEntry{Severity: strings.ToUpper(e.Severity.String())}

	if !e.Timestamp.IsZero() {
		r.Timestamp = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if e.Resource != nil {
		r.Resource.Type = e.Resource.Type
		r.Resource.Labels = e.Resource.Labels
	}

	switch p := e.Payload.(type) {
	case string:
		r.TextPayload = p
	case *structpb.Struct:
		r.Payload = p.AsMap()
	}

	if e.HTTPRequest != nil {
		req := &renderedRequest{
			Status:       e.HTTPRequest.Status,
			ResponseSize: e.HTTPRequest.ResponseSize,
		}
		if e.HTTPRequest.Request != nil {
			req.Method = e.HTTPRequest.Request.Method
			if e.HTTPRequest.Request.URL != nil {
				req.URL = e.HTTPRequest.Request.URL.String()
			}
		}
		r.HTTPRequest = req
	}
	return r
}
