/*
Package server implements msgpack IPC for weld splitting.

The server reads one msgpack map per request from stdin and writes one msgpack
map per response to stdout. Logs go to stderr so they never interleave with frames.
Requests are handled synchronously, in order, with timing info included in responses.

# IPC

Every message carries an "id" which the response echoes back.
Split requests look like this:

	{"id": "req_001", "w": "123456", "m": "dp", "s": 100000}

"m" (mode) and "s" (step budget) are optional and fall back to the config.
The server answers with the segmentation with the most tokens:

	{"id": "req_001", "ids": ["123", "456"], "n": 2, "c": 2, "t": 145}

where "n" is the token count, "c" the number of segmentations and "t" microseconds.

Roster info is an action request:

	{"id": "info_001", "action": "get_info"}

# Errors

Failures are reported per request and never end the session:

	{"id": "req_002", "e": "no valid segmentation", "c": 404}

Codes are 400 for malformed or rejected requests, 404 when nothing covers the weld,
408 when the step budget or timeout ran out, 503 when no employees are loaded and
500 for anything else.
*/
package server

// SplitRequest asks for the best segmentation of W.
type SplitRequest struct {
	ID       string `msgpack:"id"`
	Weld     string `msgpack:"w"`
	Mode     string `msgpack:"m,omitempty"`
	MaxSteps int64  `msgpack:"s,omitempty"`
	Action   string `msgpack:"action,omitempty"` // "get_info"
}

// SplitResponse - split result
type SplitResponse struct {
	ID        string   `msgpack:"id"`
	IDs       []string `msgpack:"ids"`
	Count     int      `msgpack:"n"`
	Total     int64    `msgpack:"c"`
	TimeTaken int64    `msgpack:"t"`
}

// InfoResponse describes the loaded roster and server limits.
type InfoResponse struct {
	ID         string   `msgpack:"id"`
	Status     string   `msgpack:"status"`
	Employees  int      `msgpack:"employees"`
	MaxWeldLen int      `msgpack:"max_weld_len"`
	Modes      []string `msgpack:"modes"`
}

// SplitError holds basic error information for any request
type SplitError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Error codes sent in SplitError.
const (
	CodeBadRequest  = 400
	CodeNotFound    = 404
	CodeTimeout     = 408
	CodeInternal    = 500
	CodeUnavailable = 503
)

const (
	actionGetInfo = "get_info"
	statusReady   = "ready"
	statusOK      = "ok"
)
