package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ledongthuc/pdf"

	"pls-engine/internal/app"
	"pls-engine/internal/httputil"
	"pls-engine/internal/pipeline"
)

type generateRequest struct {
	Text string `json:"text" validate:"required"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := routes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("pls-engine listening", "addr", addr, "model", deps.Config.ModelName)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func routes(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Get("/health", healthHandler())
	r.Get("/get_model_name", modelNameHandler(deps))
	r.Post("/generate_pls", generateHandler(deps))
	r.Post("/generate_pls_upload", uploadHandler(deps))

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func modelNameHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, deps.Config.ModelName)
	}
}

func generateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.Fail(deps.Log, w, "Input text cannot be empty.", err, http.StatusBadRequest)
			return
		}
		runPipeline(deps, w, r, req.Text)
	}
}

// uploadHandler accepts a PDF or TXT abstract and routes the extracted text
// into the same pipeline as /generate_pls.
func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".txt" && ext != ".pdf" {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		text := string(content)
		if ext == ".pdf" {
			extracted, err := extractPDF(content)
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to extract text from PDF", err, http.StatusBadRequest)
				return
			}
			text = extracted
		}
		runPipeline(deps, w, r, text)
	}
}

// runPipeline executes one evaluation and translates pipeline error kinds
// to the transport contract: 400 invalid input, 422 already simplified,
// 500 anything else.
func runPipeline(deps app.Deps, w http.ResponseWriter, r *http.Request, text string) {
	eval, err := deps.Pipeline.Run(r.Context(), text)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, eval)
	case errors.Is(err, pipeline.ErrInvalidArgument):
		httputil.Fail(deps.Log, w, "Input text cannot be empty.", err, http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrAlreadySimplified):
		httputil.Fail(deps.Log, w, "Input text is PLS already.", err, http.StatusUnprocessableEntity)
	default:
		httputil.Fail(deps.Log, w, fmt.Sprintf("An internal error occurred: %v", err), err, http.StatusInternalServerError)
	}
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
