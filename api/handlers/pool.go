package handlers

import (
	"net/http"

	"github.com/aria-lang/seqalign/internal/pool"
)

// PoolResponse reports the state of the aligner pool.
type PoolResponse struct {
	Size        int `json:"size"`
	Available   int `json:"available"`
	Outstanding int `json:"outstanding"`
}

// PoolStatus returns a handler reporting the state of p.
func PoolStatus(p *pool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PoolResponse{
			Size:        p.Size(),
			Available:   p.Available(),
			Outstanding: p.Outstanding(),
		})
	}
}
