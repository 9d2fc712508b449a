// Package task tracks enrichment tasks and runs their background units of
// work. A Store owns task state; a Runner detaches units of work and records
// their terminal outcome in the Store.
package task
