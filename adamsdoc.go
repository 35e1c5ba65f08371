// Package adamsdoc acquires documents from the NRC ADAMS registry, caches
// their extracted text on disk, and answers questions over the cached corpus
// with page-aware citations.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, sqlite/, gemini/).
package adamsdoc
