// Package insight defines the place query, the Insight document returned to
// callers, the prompt sent to the model, and the validator that turns raw
// model output into an Insight.
package insight
