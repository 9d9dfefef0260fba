package handlers

import (
	"context"
	"net/http"

	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/pkg/errors"
)

// AlignmentRequest represents an alignment request.
type AlignmentRequest struct {
	Ref   ReadRequest `json:"ref"`
	Query ReadRequest `json:"query"`
	// "global" or "local"; empty uses the server default
	Mode string `json:"mode,omitempty"`
	// consult and fill the aligner's cache
	Cache bool `json:"cache,omitempty"`
}

// AlignmentResponse represents the response for alignment.
type AlignmentResponse struct {
	AlignedRef   string  `json:"aligned_ref"`
	AlignedQuery string  `json:"aligned_query"`
	Mode         string  `json:"mode"`
	Score        int     `json:"score"`
	RefStart     int     `json:"ref_start"`
	RefEnd       int     `json:"ref_end"`
	QueryStart   int     `json:"query_start"`
	QueryEnd     int     `json:"query_end"`
	Identity     float64 `json:"identity"`
	CIGAR        string  `json:"cigar"`
	Matches      int     `json:"matches"`
	GapOpenings  int     `json:"gap_openings"`
	Cached       bool    `json:"cached"`
}

// ProfileRequest represents a profile request. Primer profiles without
// quality or k-mer gating; Start and Stop limit the profile to those
// alignment columns, a zero Stop meaning the end.
type ProfileRequest struct {
	AlignmentRequest
	Primer bool `json:"primer,omitempty"`
	Start  int  `json:"start,omitempty"`
	Stop   int  `json:"stop,omitempty"`
}

// ProfileResponse represents the response for profiling.
type ProfileResponse struct {
	Alignment  AlignmentResponse   `json:"alignment"`
	Comparison profiler.Comparison `json:"comparison"`
}

// Align returns a handler aligning one read pair with an aligner of p.
// Requests without a mode use mode.
func Align(p *pool.Pool, mode alignment.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AlignmentRequest
		if !decode(w, r, &req) {
			return
		}

		resp, _, ok := run(r.Context(), w, p, &req, mode, nil)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Profile returns a handler aligning and profiling one read pair.
func Profile(p *pool.Pool, mode alignment.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProfileRequest
		if !decode(w, r, &req) {
			return
		}

		if req.Start < 0 || req.Stop < 0 {
			writeError(w, http.StatusBadRequest, "start and stop must not be negative")
			return
		}

		resp, comp, ok := run(r.Context(), w, p, &req.AlignmentRequest, mode, &req)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, ProfileResponse{Alignment: resp, Comparison: comp})
	}
}

func run(ctx context.Context, w http.ResponseWriter, p *pool.Pool, req *AlignmentRequest,
	mode alignment.Mode, prof *ProfileRequest) (AlignmentResponse, profiler.Comparison, bool) {
	var resp AlignmentResponse
	var comp profiler.Comparison

	if req.Mode != "" {
		var err error
		if mode, err = alignment.ParseMode(req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return resp, comp, false
		}
	}

	ref, query, ok := readPair(w, &req.Ref, &req.Query)
	if !ok {
		return resp, comp, false
	}

	h, err := p.CheckoutContext(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return resp, comp, false
	}
	defer h.Close()

	hits := h.CacheHits()
	if req.Cache {
		err = h.AlignCache(ref, query, mode)
	} else {
		err = h.Align(ref, query, mode)
	}
	if err != nil {
		var sizeErr *alignment.SizeError
		if errors.As(err, &sizeErr) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return resp, comp, false
	}

	result := h.Result()
	pair := h.Pair()
	resp = AlignmentResponse{
		AlignedRef:   pair.A,
		AlignedQuery: pair.B,
		Mode:         mode.String(),
		Score:        result.Score,
		RefStart:     result.AStart,
		RefEnd:       result.AEnd,
		QueryStart:   result.BStart,
		QueryEnd:     result.BEnd,
		Identity:     pair.Identity(),
		CIGAR:        pair.CIGAR(),
		Matches:      pair.MatchCount(),
		GapOpenings:  pair.GapOpenings(),
		Cached:       h.CacheHits() > hits,
	}

	if prof != nil {
		if prof.Primer {
			comp = h.ProfilePrimerRange(prof.Start, prof.Stop)
		} else {
			comp = h.ProfileRange(prof.Start, prof.Stop)
		}
	}
	return resp, comp, true
}
