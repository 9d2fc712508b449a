// Package mocks provides hand-written test doubles for the interfaces that
// sit on process boundaries: the language model and token validation.
//
// Each mock accepts an optional function field overriding its behavior and
// otherwise returns the configured default values. Calls are recorded so
// tests can assert on what was sent.
package mocks
