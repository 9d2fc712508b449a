// Package gemini provides a generation.Completer backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it translates a generation.Prompt
// into a genai request and maps the reply and its failure modes back onto the
// generation package's error taxonomy. It never retries; a failed call is
// reported to the caller as is.
package gemini
