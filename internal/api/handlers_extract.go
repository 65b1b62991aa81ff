package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dgallion1/ocrgrid/internal/report"
	"github.com/dgallion1/ocrgrid/internal/tables"
)

type extractRequest struct {
	Page      int                   `json:"page"`
	Profile   string                `json:"profile"`
	Fragments []tables.TextFragment `json:"fragments"`
}

type extractResponse struct {
	Page       int                   `json:"page"`
	Profile    string                `json:"profile"`
	Tables     []report.TableEntry   `json:"tables"`
	Leftover   []tables.TextFragment `json:"leftover"`
	Rows       int                   `json:"rows"`
	HeaderRows int                   `json:"header_rows"`
	DataRows   int                   `json:"data_rows"`
}

// handleExtract runs table reconstruction on fragments supplied in the
// request and answers synchronously.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.cfg.MaxUploadBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	ex := s.orchestrator.Extractor()
	if req.Profile != "" && req.Profile != ex.Profile().Name {
		p, err := tables.ProfileByName(req.Profile)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ex = tables.NewExtractor(p, s.log)
	}

	res := ex.ExtractPage(req.Fragments, req.Page)
	resp := extractResponse{
		Page:       res.Page,
		Profile:    ex.Profile().Name,
		Tables:     make([]report.TableEntry, 0, len(res.Tables)),
		Leftover:   res.Leftover,
		Rows:       res.Rows,
		HeaderRows: res.HeaderRows,
		DataRows:   res.DataRows,
	}
	if resp.Leftover == nil {
		resp.Leftover = []tables.TextFragment{}
	}
	for _, t := range res.Tables {
		resp.Tables = append(resp.Tables, report.TableEntry{RenderedTable: t, HTML: t.HTML()})
	}
	writeJSON(w, http.StatusOK, resp)
}
