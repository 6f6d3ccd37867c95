package models

import (
	"encoding/json"
)

// ResolutionResult is the metadata payload the lookup API returns for a
// magnet link. Size is in bytes, Count is the number of files inside the
// torrent. Screenshots is never nil once a payload has passed
// ValidResponse; an empty list is fine.
type ResolutionResult struct {
	Type        string       `json:"type"`
	FileType    string       `json:"file_type"`
	Name        string       `json:"name"`
	Size        int64        `json:"size"`
	Count       int          `json:"count"`
	Screenshots []Screenshot `json:"screenshots"`
	Error       string       `json:"error,omitempty"`
}

// Screenshot is one preview image entry of a ResolutionResult.
type Screenshot struct {
	Screenshot string `json:"screenshot"`
}

// IsUpstreamError reports whether the API answered with an explicit error
// payload ({error, name}) instead of metadata. Such results are surfaced
// to the user and never cached.
func (r *ResolutionResult) IsUpstreamError() bool {
	return r != nil && r.Error != ""
}

// requiredResponseKeys are the keys a lookup response must carry before
// it is trusted anywhere downstream.
var requiredResponseKeys = []string{"type", "file_type", "name", "size", "count", "screenshots"}

// ValidResponse reports whether raw is a JSON object carrying all six
// required keys with a non-null screenshots value. Values beyond presence
// are not constrained at this layer.
func ValidResponse(raw []byte) bool {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}
	for _, key := range requiredResponseKeys {
		if _, ok := payload[key]; !ok {
			return false
		}
	}
	return string(payload["screenshots"]) != "null"
}

// DecodeResult parses a lookup response body. It does not validate shape;
// callers gate with ValidResponse first.
func DecodeResult(raw []byte) (*ResolutionResult, error) {
	var result ResolutionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	if result.Screenshots == nil {
		result.Screenshots = []Screenshot{}
	}
	return &result, nil
}
