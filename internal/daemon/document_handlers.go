package daemon

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hirepay/internal/api"
	"hirepay/internal/procedure"
	"hirepay/internal/workflow"
)

// multipartMemoryLimit caps the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const multipartMemoryLimit = 4 << 20

func (s *apiServer) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	docs, err := s.daemon.service.ProcedureDocuments(r.Context(), uuid)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromDocuments(docs, uuid))
}

func (s *apiServer) handleDocumentsByType(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	docType, ok := procedure.ParseDocType(chi.URLParam(r, "docType"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown document type")
		return
	}
	docs, err := s.daemon.service.DocumentsByType(r.Context(), uuid, docType)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromDocuments(docs, uuid))
}

func (s *apiServer) handleLatestDocument(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	docType, ok := procedure.ParseDocType(chi.URLParam(r, "docType"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown document type")
		return
	}
	doc, err := s.daemon.service.LatestDocumentByType(r.Context(), uuid, docType)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromDocument(doc, uuid))
}

func (s *apiServer) handleSendDocument(w http.ResponseWriter, r *http.Request) {
	var req api.SendDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	docType, ok := procedure.ParseDocType(req.DocumentType)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown document type")
		return
	}
	uuid := chi.URLParam(r, "uuid")
	result, err := s.daemon.service.SendDocument(r.Context(), uuid, workflow.SendRequest{
		DocType: docType,
		SentBy:  req.SentBy,
		Notes:   req.Notes,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.DocumentResult{
		Document:  api.FromDocument(result.Document, uuid),
		Procedure: api.FromProcedure(result.Procedure),
	})
}

// handleReceiveDocument accepts a multipart upload with a "file" part plus
// documentType, uploadedBy, and optional notes fields.
func (s *apiServer) handleReceiveDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.daemon.cfg.MaxUploadBytes()+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	docType, ok := procedure.ParseDocType(r.FormValue("documentType"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown document type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	uuid := chi.URLParam(r, "uuid")
	result, err := s.daemon.service.ReceiveDocument(r.Context(), uuid, workflow.ReceiveRequest{
		DocType:    docType,
		UploadedBy: r.FormValue("uploadedBy"),
		Notes:      r.FormValue("notes"),
		Upload: workflow.Upload{
			FileName:    header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Content:     file,
		},
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.DocumentResult{
		Document:  api.FromDocument(result.Document, uuid),
		Procedure: api.FromProcedure(result.Procedure),
	})
}

func (s *apiServer) handleUpdateDocumentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req api.UpdateDocumentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	status, ok := procedure.ParseDocumentStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown document status")
		return
	}
	doc, err := s.daemon.service.UpdateDocumentStatus(r.Context(), id, status, req.Notes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromDocument(doc, ""))
}

func (s *apiServer) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	rc, doc, err := s.daemon.service.OpenDocument(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	defer rc.Close()

	name := strings.ToLower(string(doc.DocType)) + "-v" + strconv.Itoa(doc.Version)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("document download interrupted", "document", doc.ID, "error", err)
	}
}
