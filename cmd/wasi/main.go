//go:build wasip1

// Command jqldb-wasi is the WASI (wasip1) entrypoint used by the wazero
// round-trip comparison test. It lets the parser+printer pipeline be
// exercised inside a WebAssembly sandbox and diffed against the same
// pipeline running natively.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "query": "<jql query text>" }
//	stdout: { "printed": "<round-tripped query text>", "placeholders": <int> }  on success
//	        { "error":  "<message>" }                                          on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o jqldb.wasm ./cmd/wasi/
package main

import (
	"encoding/json"
	"os"

	"github.com/docstore/jqldb"
)

type request struct {
	Query string `json:"query"`
}

type response struct {
	Printed      string `json:"printed,omitempty"`
	Placeholders int    `json:"placeholders,omitempty"`
	Error        string `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	sess, err := jqldb.Compile(req.Query)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	printed, err := sess.String()
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	writeResponse(response{Printed: printed, Placeholders: sess.PlaceholderCount()}, 0)
}
