// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the use cases in internal/service.
//
// Handlers depend on small interfaces (ExtractionRunner, Enricher,
// TermDefiner) rather than concrete services. Every error leaving a handler
// goes through HandleAPIError, which maps the domain taxonomy to a status
// code and a message that is safe to show to clients; the full error is only
// logged, after redaction.
//
// Subpackages:
//   - shared: JSON decoding, validation, responses and request context values
//   - middleware: trace ID and bearer-token authentication
package api
