// Package handlers implements the /v1 endpoints of the flowmaker HTTP API.
//
// Routes, registered by package server:
//
//	POST   /v1/render                       compile a source
//	GET    /v1/config                       rendering engine init config
//	GET    /v1/share?diagram=…              decode and compile a share link
//	PUT    /v1/activities/{activity}/diagram save an activity's diagram
//	GET    /v1/activities/{activity}/diagram fetch an activity's diagram
//	GET    /v1/diagrams                     list saved diagrams
//	GET    /v1/diagrams/{id}                fetch a diagram
//	DELETE /v1/diagrams/{id}                delete a diagram
//
// Failures use the error envelope from package types. Compile errors answer
// 422 Unprocessable Entity with the compiler's error type, message and
// 0-based line; a save whose source does not compile stores nothing.
package handlers
