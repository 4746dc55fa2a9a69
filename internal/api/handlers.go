package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/internal/output"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) limits() limits {
	return limits{maxPaths: s.settings.MaxPaths, maxSteps: s.settings.MaxSteps}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": Version,
			"models":  []domain.Model{domain.ModelVasicek, domain.ModelCIR},
		},
	})
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: domain.ExampleConfiguration()})
}

func (s *Server) decodeRunRequest(w http.ResponseWriter, r *http.Request) (RunRequest, bool) {
	var rr RunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rr); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return rr, false
	}
	return rr, true
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	rr, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}
	req, err := rr.toRequest(s.limits())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := s.engine.Run(r.Context(), req)
	if err != nil {
		s.logger.Warn("simulation failed", "model", req.Model, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	if rr.OmitPaths {
		result.Paths = nil
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleMoments(w http.ResponseWriter, r *http.Request) {
	rr, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}
	// Moments need only the time axis.
	if rr.Paths == 0 {
		rr.Paths = 1
	}
	req, err := rr.toRequest(s.limits())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	curve, err := s.engine.Moments(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: curve})
}

// runFromQuery parses form-style query parameters and runs the engine.
func (s *Server) runFromQuery(r *http.Request) (output.FormValues, *domain.SimulationResult, error) {
	form := formFromQuery(r.URL.Query())
	rr, err := runRequestFromForm(form)
	if err != nil {
		return form, nil, err
	}
	req, err := rr.toRequest(s.limits())
	if err != nil {
		return form, nil, err
	}
	result, err := s.engine.Run(r.Context(), req)
	return form, result, err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	form, result, err := s.runFromQuery(r)

	page := output.NewPage(result)
	page.Interactive = true
	page.Form = form
	status := http.StatusOK
	if err != nil {
		page.Error = err.Error()
		status = statusFor(err)
	} else {
		page.Query = template.URL(queryFor(form, result).Encode())
	}

	var buf bytes.Buffer
	if err := output.RenderPage(&buf, page); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportPaths(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, output.PathsCSV{})
}

func (s *Server) handleExportMoments(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, output.MomentsCSV{})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, f output.Formatter) {
	_, result, err := s.runFromQuery(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	data, err := f.Format(result)
	if err != nil {
		s.logger.Error("export failed", "format", f.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAttachment(w, "text/csv", output.ArtifactName(result, f), data)
}

func (s *Server) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	_, result, err := s.runFromQuery(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := output.WriteBundle(&buf, result, nil, output.Options{}); err != nil {
		s.logger.Error("bundle failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeAttachment(w, "application/zip", fmt.Sprintf("%s_bundle.zip", result.Model), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
