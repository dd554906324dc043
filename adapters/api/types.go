package api

import "fellingdate/domain/dendro"

// intervalRequest is the JSON body for POST /v1/interval.
type intervalRequest struct {
	SeriesID string   `json:"series_id"`
	NSapwood *float64 `json:"n_sapwood"`
	Last     int      `json:"last"`
	SWData   string   `json:"sw_data"`
	DensFun  string   `json:"densfun"`
	CredMass float64  `json:"cred_mass"`
	HDI      bool     `json:"hdi"`
	Archive  bool     `json:"archive"` // persist the interval when the archive is enabled
}

// seriesPayload mirrors dendro.SeriesRecord for request bodies.
type seriesPayload struct {
	ID          string `json:"id"`
	Last        int    `json:"last"`
	NSapwood    *int   `json:"n_sapwood"`
	WaneyEdge   bool   `json:"waneyedge"`
	FellingYear *int   `json:"felling_year"`
}

func (p seriesPayload) record() dendro.SeriesRecord {
	return dendro.SeriesRecord{
		ID:          p.ID,
		Last:        p.Last,
		NSapwood:    p.NSapwood,
		WaneyEdge:   p.WaneyEdge,
		FellingYear: p.FellingYear,
	}
}

// combineRequest is the JSON body for POST /v1/combine.
type combineRequest struct {
	Series    []seriesPayload `json:"series"`
	SWData    string          `json:"sw_data"`
	DensFun   string          `json:"densfun"`
	CredMass  float64         `json:"cred_mass"`
	Threshold float64         `json:"threshold"`
}

// sumRequest is the JSON body for POST /v1/sum.
type sumRequest struct {
	Series  []seriesPayload `json:"series"`
	SWData  string          `json:"sw_data"`
	DensFun string          `json:"densfun"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}
