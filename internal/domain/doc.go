// Package domain contains the core entities and error taxonomy of the
// application: classified content blocks, extraction results and term
// definitions. It is independent of any specific infrastructure or delivery
// mechanism.
package domain
