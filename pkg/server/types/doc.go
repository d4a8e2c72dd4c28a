// Package types defines the JSON request and response bodies of the
// flowmaker HTTP API, including the error envelope
//
//	{"error": {"type": "unexpected_token", "message": "...", "line": 3}}
package types
