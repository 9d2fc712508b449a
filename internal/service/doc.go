// Package service contains the application use cases: synchronous
// extraction, asynchronous enrichment with polling, and term definition.
//
// Services receive their collaborators through constructor injection and
// depend only on small interfaces (Fetcher, Extractor, Annotator, Definer,
// Launcher) so each use case can be tested with an isolated task store and
// stub collaborators. Transport concerns live in internal/api,
// internal/mcpserver and cmd/baikectl, which all share these services.
//
// Error handling follows the domain taxonomy: input problems are returned as
// *domain.ValidationError, fetch failures are passed through unchanged, and
// failures inside background work never leave the unit of work; they are
// recorded on the task instead.
package service
