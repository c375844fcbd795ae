package summary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medsummary/internal/web"
)

const (
	MsgInvalidFile   = "Please upload a valid PDF file."
	MsgUploadFailed  = "Failed to process the file. Please try again."
	MsgNotEnoughData = "We could not find enough medical information in this document to build a summary. Try another report."
)

// StateStore keeps the raw payload between the upload redirect and the results view.
type StateStore interface {
	Put(payload []byte) uuid.UUID
	Get(id uuid.UUID) ([]byte, bool)
}

type Pages interface {
	Render(w io.Writer, name string, data any) error
}

// ResultPage is the body of the results template.
type ResultPage struct {
	ID   string
	View View
}

type InsufficientPage struct {
	Message string
}

type apiError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handler struct {
	svc            Service
	store          StateStore
	pages          Pages
	log            *zap.Logger
	maxUploadBytes int64
}

func NewHandler(svc Service, store StateStore, pages Pages, log *zap.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		store:          store,
		pages:          pages,
		log:            log,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, web.PageHome, "", web.NewHomePage(""))
}

// Upload handles the hero form. On success the browser is sent to the results
// view; on failure the landing page is shown again with the inline error.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	raw, status, msg := h.process(w, r)
	if status != http.StatusOK {
		h.render(w, status, web.PageHome, "", web.NewHomePage(msg))
		return
	}

	id := h.store.Put(raw)
	http.Redirect(w, r, "/result/"+id.String(), http.StatusSeeOther)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := h.state(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	v, err := h.svc.BuildView(raw)
	if err != nil {
		// the stored payload passed the JSON check but is not an object
		h.log.Warn("summary payload not decodable", zap.String("result_id", id.String()), zap.Error(err))
	}
	if v.InsufficientData {
		h.render(w, http.StatusOK, web.PageInsufficient, "Not enough data", InsufficientPage{Message: MsgNotEnoughData})
		return
	}
	h.render(w, http.StatusOK, web.PageResult, "Summary", ResultPage{ID: id.String(), View: v})
}

func (h *Handler) ResultJSON(w http.ResponseWriter, r *http.Request) {
	_, raw, ok := h.state(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="medical-summary.json"`)
	w.Write(raw)
}

func (h *Handler) ResultPDF(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := h.state(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	doc, err := h.svc.BuildReport(r.Context(), raw)
	if err != nil {
		h.log.Error("failed to build report", zap.String("result_id", id.String()), zap.Error(err))
		http.Error(w, "Failed to generate the PDF report.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", PDFContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="medical-summary.pdf"`)
	w.Write(doc)
}

// APIUpload is the JSON equivalent of Upload. The success body is the
// summarizer payload unchanged.
func (h *Handler) APIUpload(w http.ResponseWriter, r *http.Request) {
	raw, status, msg := h.process(w, r)
	if status != http.StatusOK {
		writeJSON(w, status, apiError{Success: false, Message: msg})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// process reads the multipart upload and runs it through the service. It
// returns the payload, or a non-200 status with the user-facing message.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) (json.RawMessage, int, string) {
	upload, err := h.readUpload(w, r)
	switch {
	case errors.Is(err, ErrFileTooLarge):
		h.log.Warn("upload too large", zap.Int64("limit_bytes", h.maxUploadBytes), zap.Error(err))
		return nil, http.StatusUnprocessableEntity, MsgInvalidFile
	case err != nil:
		h.log.Info("upload rejected", zap.Error(err))
		return nil, http.StatusUnprocessableEntity, MsgInvalidFile
	}

	raw, err := h.svc.ProcessUpload(r.Context(), upload)
	switch {
	case errors.Is(err, ErrInvalidFileType):
		h.log.Info("upload rejected",
			zap.String("file_name", upload.FileName),
			zap.String("content_type", upload.ContentType),
		)
		return nil, http.StatusUnprocessableEntity, MsgInvalidFile
	case err != nil:
		h.log.Error("upload failed", zap.String("file_name", upload.FileName), zap.Error(err))
		return nil, http.StatusBadGateway, MsgUploadFailed
	}
	return raw, http.StatusOK, ""
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Upload{}, fmt.Errorf("%w: %v", ErrFileTooLarge, err)
		}
		return Upload{}, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        buf.Bytes(),
	}, nil
}

// state looks up the navigation state named by the {id} URL parameter.
func (h *Handler) state(r *http.Request) (uuid.UUID, []byte, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, nil, false
	}
	raw, ok := h.store.Get(id)
	if !ok {
		return uuid.Nil, nil, false
	}
	return id, raw, true
}

// render executes the page into a buffer first so a template error can still
// produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, name, title string, body any) {
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, name, web.NewPage(title, body)); err != nil {
		h.log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes mounts the site routes. uploadMW wraps only the upload endpoint.
func RegisterRoutes(r chi.Router, h *Handler, uploadMW ...func(http.Handler) http.Handler) {
	r.Get("/", h.Home)
	r.With(uploadMW...).Post("/upload", h.Upload)
	r.Get("/result", h.Result)
	r.Route("/result/{id}", func(r chi.Router) {
		r.Get("/", h.Result)
		r.Get("/summary.json", h.ResultJSON)
		r.Get("/report.pdf", h.ResultPDF)
	})
}

func RegisterAPIRoutes(r chi.Router, h *Handler, uploadMW ...func(http.Handler) http.Handler) {
	r.With(uploadMW...).Post("/summaries", h.APIUpload)
}
