package handlers

import (
	"fmt"
	"net/http"

	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/sequence"
)

// SimilarityRequest represents a k-mer similarity request.
type SimilarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
	K int    `json:"k"`
}

// SimilarityResponse represents the response for k-mer similarity.
type SimilarityResponse struct {
	K               int     `json:"k"`
	Shared          int     `json:"shared"`
	Similarity      float64 `json:"similarity"`
	JaccardDistance float64 `json:"jaccard_distance"`
}

// Similarity returns a handler comparing the k-mer sets of two sequences,
// the measure used to prefilter batch alignments.
func Similarity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SimilarityRequest
		if !decode(w, r, &req) {
			return
		}

		if req.K < 1 || req.K > kmer.MaxK {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("k must be in [1, %d]", kmer.MaxK))
			return
		}
		if err := sequence.ValidateBases(req.A); err != nil {
			writeError(w, http.StatusBadRequest, "a: "+err.Error())
			return
		}
		if err := sequence.ValidateBases(req.B); err != nil {
			writeError(w, http.StatusBadRequest, "b: "+err.Error())
			return
		}

		a, b := kmer.Set(req.A, req.K), kmer.Set(req.B, req.K)
		writeJSON(w, http.StatusOK, SimilarityResponse{
			K:               req.K,
			Shared:          kmer.Shared(a, b),
			Similarity:      kmer.Similarity(a, b),
			JaccardDistance: kmer.JaccardDistance(a, b),
		})
	}
}
