package shield

import (
	"net/http"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

// Collection runs shields in add-order. The first shield to answer with a
// response short-circuits the rest; an error does the same. When every
// shield passes, the collection passes.
//
// The collection maintains a merged zone collection over its shields'
// contexts, so it satisfies the Shield interface itself and nests.
type Collection struct {
	shields []Shield
	context *zone.Collection
}

// NewCollection builds a shield pipeline.
func NewCollection(shields ...Shield) *Collection {
	c := &Collection{context: zone.NewCollection()}
	for _, s := range shields {
		c.Add(s)
	}
	return c
}

// Add appends a shield and merges its context.
func (c *Collection) Add(s Shield) {
	c.shields = append(c.shields, s)
	c.context.Add(s.Context())
}

// Handle runs the pipeline for one request.
func (c *Collection) Handle(r *http.Request) (*security.Response, error) {
	for _, s := range c.shields {
		resp, err := s.Handle(r)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

// Context returns the merged zone collection.
func (c *Collection) Context() zone.Context { return c.context }
