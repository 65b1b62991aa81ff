package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/ocrgrid/internal/objstore"
	"github.com/dgallion1/ocrgrid/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleGetDocument returns the stored metadata record of a document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := sanitizeDocID(chi.URLParam(r, "docID"))
	store := s.orchestrator.Store()
	data, err := store.GetObject(r.Context(), s.orchestrator.Keys().Meta(docID))
	if errors.Is(err, objstore.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	var meta pipeline.DocumentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		jsonError(w, "corrupt document record", http.StatusInternalServerError)
		return
	}

	keys := s.orchestrator.Keys()
	writeJSON(w, http.StatusOK, map[string]any{
		"document": meta,
		"artifacts": map[string]string{
			pipeline.ArtifactReport:     store.URL(keys.Report(docID)),
			pipeline.ArtifactReportHTML: store.URL(keys.ReportHTML(docID)),
			pipeline.ArtifactRawOCR:     store.URL(keys.RawOCR(docID)),
			pipeline.ArtifactTablesJSON: store.URL(keys.TablesJSON(docID)),
			pipeline.ArtifactTablesDOCX: store.URL(keys.TablesDOCX(docID)),
		},
	})
}

// handleGetReport serves the stored report as markdown (default) or HTML.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	docID := sanitizeDocID(chi.URLParam(r, "docID"))
	keys := s.orchestrator.Keys()
	switch r.URL.Query().Get("format") {
	case "", "md", "markdown":
		s.serveObject(w, r, keys.Report(docID), "text/markdown; charset=utf-8", "")
	case "html":
		s.serveObject(w, r, keys.ReportHTML(docID), "text/html; charset=utf-8", "")
	default:
		jsonError(w, "format must be md or html", http.StatusBadRequest)
	}
}

// handleGetTables serves the rendered tables as JSON (default) or DOCX.
func (s *Server) handleGetTables(w http.ResponseWriter, r *http.Request) {
	docID := sanitizeDocID(chi.URLParam(r, "docID"))
	keys := s.orchestrator.Keys()
	switch r.URL.Query().Get("format") {
	case "", "json":
		s.serveObject(w, r, keys.TablesJSON(docID), "application/json", "")
	case "docx":
		s.serveObject(w, r, keys.TablesDOCX(docID),
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			docID+"_tables.docx")
	default:
		jsonError(w, "format must be json or docx", http.StatusBadRequest)
	}
}

func (s *Server) serveObject(w http.ResponseWriter, r *http.Request, key, contentType, attachment string) {
	data, err := s.orchestrator.Store().GetObject(r.Context(), key)
	if errors.Is(err, objstore.ErrNotFound) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("read artifact", "key", key, "error", err)
		jsonError(w, "failed to read artifact", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if attachment != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+attachment+`"`)
	}
	_, _ = w.Write(data)
}

// handleDeleteDocument deletes a document's artifacts, its metadata and
// its hash index entry.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := sanitizeDocID(chi.URLParam(r, "docID"))
	if docID == "" {
		jsonError(w, "invalid doc id", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	store := s.orchestrator.Store()
	keys := s.orchestrator.Keys()

	hashDeleted := false
	if data, err := store.GetObject(ctx, keys.Meta(docID)); err == nil {
		var meta pipeline.DocumentMeta
		if json.Unmarshal(data, &meta) == nil && meta.ContentHash != "" {
			// Only drop the index entry if it still points at this document.
			idx, err := store.GetObject(ctx, keys.ByHash(meta.ContentHash))
			if err == nil && string(bytes.TrimSpace(idx)) == docID {
				hashDeleted = store.DeleteObject(ctx, keys.ByHash(meta.ContentHash)) == nil
			}
		}
	}

	deleted := 0
	var failures []string
	for _, key := range append(keys.All(docID), keys.Meta(docID)) {
		if err := store.DeleteObject(ctx, key); err != nil {
			failures = append(failures, key)
			continue
		}
		deleted++
	}

	resp := map[string]any{
		"doc_id":             docID,
		"artifacts_deleted":  deleted,
		"hash_index_deleted": hashDeleted,
	}
	if len(failures) > 0 {
		resp["failed"] = failures
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
