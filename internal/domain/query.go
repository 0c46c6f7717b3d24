package domain

import "time"

// QueryRequest asks which features intersect a geometry.
type QueryRequest struct {
	Geometry     Geometry // Query shape
	Precise      bool     // Segment-level test instead of bounds only
	CollectionID string   // Specific collection (empty = all)
	Properties   []string // Properties to return (empty = all)
}

// Validate checks the request geometry.
func (r *QueryRequest) Validate() error {
	return ValidateGeometry(r.Geometry)
}

// QueryResult holds the matches within one collection.
type QueryResult struct {
	CollectionID   string        // Collection identifier
	CollectionName string        // Collection display name
	Features       []Feature     // Matching features
	Checked        int           // Features evaluated
	QueryTime      time.Duration // Evaluation time
}

// FeatureCount returns the number of matching features.
func (r *QueryResult) FeatureCount() int {
	return len(r.Features)
}

// HasFeatures returns true if features matched.
func (r *QueryResult) HasFeatures() bool {
	return len(r.Features) > 0
}

// QueryResponse represents the full query response.
type QueryResponse struct {
	Results        []QueryResult // Results per collection
	TotalFeatures  int           // Total matching features
	Precise        bool          // Mode the query ran in
	ProcessingTime time.Duration // Total processing time
	Bounds         Bounds        // Envelope of the query geometry
}

// AddResult adds a query result to the response.
func (r *QueryResponse) AddResult(result QueryResult) {
	r.Results = append(r.Results, result)
	r.TotalFeatures += result.FeatureCount()
}
