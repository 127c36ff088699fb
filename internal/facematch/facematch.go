package facematch

// Result carries the outcome of comparing the photo on an identity document
// against a live capture. Similarity is 1/(1+d) for euclidean descriptor
// distance d, so identical faces score 1.0 and the score decays toward 0.
type Result struct {
	Similarity float64  `json:"similarity"`
	Liveness   *float64 `json:"liveness,omitempty"`
}
