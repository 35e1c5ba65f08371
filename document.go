package adamsdoc

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Descriptor describes a document discovered in the registry.
type Descriptor struct {
	ID           string `json:"id"` // accession number, e.g. ML21049A001
	Title        string `json:"title"`
	DateAdded    string `json:"dateAdded"`
	DocumentDate string `json:"documentDate"`
	SourceURL    string `json:"sourceUrl,omitempty"`
}

// Validate returns an error if the descriptor contains invalid fields.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "descriptor ID required")
	}
	return ValidateDocumentID(d.ID)
}

// ValidateDocumentID returns EINVALID unless id is usable as a file name.
// Identifiers arrive from remote pages and API responses and are used to
// build storage paths, so path separators and dot segments are rejected.
func ValidateDocumentID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return Errorf(EINVALID, "invalid document ID %q", id)
	}
	return nil
}

// Searcher finds documents in the registry.
type Searcher interface {
	// Search returns up to maxResults unique descriptors for the query.
	// A search that finds nothing returns an empty slice and a nil error.
	Search(ctx context.Context, query string, maxResults int) ([]*Descriptor, error)
}

// SearchStrategy is one named way of querying the registry. Strategies are
// attempted in order until one yields results.
type SearchStrategy interface {
	Searcher

	// Name identifies the strategy in logs and joined errors.
	Name() string
}

// DescriptorStore persists descriptors discovered by searches.
type DescriptorStore interface {
	// SaveDescriptors upserts descriptors found for a query.
	SaveDescriptors(ctx context.Context, query string, docs []*Descriptor) error

	// FindDescriptorByID retrieves a descriptor by accession number.
	// Returns ENOTFOUND if the descriptor does not exist.
	FindDescriptorByID(ctx context.Context, id string) (*Descriptor, error)

	// FindDescriptors retrieves descriptors matching the filter.
	FindDescriptors(ctx context.Context, filter DescriptorFilter) ([]*Descriptor, error)
}

// DescriptorFilter represents a filter for FindDescriptors.
type DescriptorFilter struct {
	Query *string `json:"query"`
	Since *time.Time

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PrimaryURL returns the registry viewer URL for a document.
func PrimaryURL(id string) string {
	return "https://adamswebsearch2.nrc.gov/webSearch2/main.jsp?AccessionNumber=" + url.QueryEscape(id)
}

// AlternateURL returns the direct PDF URL for a document, which is stored
// under a folder named after the first six characters of its identifier.
func AlternateURL(id string) string {
	prefix := id
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return "https://www.nrc.gov/docs/" + prefix + "/" + id + ".pdf"
}

// SourceURL returns the URL recorded on a descriptor: the viewer URL for
// ML accession numbers and the direct PDF URL otherwise.
func SourceURL(id string) string {
	if strings.HasPrefix(id, "ML") {
		return PrimaryURL(id)
	}
	return AlternateURL(id)
}
