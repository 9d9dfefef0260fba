// Package handlers provides HTTP handlers for the seqalign API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aria-lang/seqalign/internal/quality"
	"github.com/aria-lang/seqalign/internal/sequence"
	"github.com/pkg/errors"
)

// ReadRequest is one read of a request. Qual is a Phred+33 string; when
// empty every base gets the default quality.
type ReadRequest struct {
	Name string `json:"name"`
	Seq  string `json:"seq"`
	Qual string `json:"qual,omitempty"`
}

// Read validates the request and converts it to a sequence.Read.
func (req *ReadRequest) Read(defaultName string) (*sequence.Read, error) {
	if err := sequence.ValidateBases(req.Seq); err != nil {
		return nil, err
	}

	var qual []int
	if req.Qual != "" {
		var err error
		if qual, err = quality.FromPhred33([]byte(req.Qual)); err != nil {
			return nil, err
		}
	}

	name := req.Name
	if name == "" {
		name = defaultName
	}
	return sequence.New(name, req.Seq, qual)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// readPair converts the two reads of a request, reporting which one failed.
func readPair(w http.ResponseWriter, ref, query *ReadRequest) (*sequence.Read, *sequence.Read, bool) {
	a, err := ref.Read("ref")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ref: "+err.Error())
		return nil, nil, false
	}
	b, err := query.Read("query")
	if err != nil {
		writeError(w, http.StatusBadRequest, "query: "+err.Error())
		return nil, nil, false
	}
	return a, b, true
}
