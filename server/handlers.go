package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/manimation/manimation/codegen"
	"github.com/manimation/manimation/core"
	"github.com/manimation/manimation/provider"
	"github.com/manimation/manimation/render"
)

type generateRequest struct {
	Prompt     string `json:"prompt"`
	Complexity string `json:"complexity"`
	Quality    string `json:"quality"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
}

type refineRequest struct {
	Feedback string `json:"feedback"`
	Code     string `json:"code"`
	Quality  string `json:"quality"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type renderRequest struct {
	Code    string `json:"code"`
	Quality string `json:"quality"`
}

type evaluateRequest struct {
	Code       string `json:"code"`
	Prompt     string `json:"prompt"`
	Complexity string `json:"complexity"`
}

// animationResponse is the wire shape shared by the animation
// endpoints. On failure Error is set and Code may still carry the
// generated source.
type animationResponse struct {
	Title    string `json:"title,omitempty"`
	Code     string `json:"code,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
}

type evaluateResponse struct {
	Evaluation codegen.Evaluation `json:"evaluation"`
	Report     string             `json:"report,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

type modelsResponse struct {
	Models []provider.ModelInfo `json:"models"`
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.encodeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	coreReq, err := core.NewRequest(req.Prompt, req.Complexity, req.Quality)
	if err != nil {
		s.encodeError(w, userMessage(err), http.StatusBadRequest)
		return
	}
	if err := s.checkProvider(req.Provider); err != nil {
		s.encodeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	coreReq.Provider = req.Provider
	coreReq.Model = req.Model

	s.logger.Info(fmt.Sprintf("Generating animation for prompt: %q", coreReq.Prompt))

	res, err := s.service.Generate(r.Context(), coreReq, nil)
	if err != nil {
		s.writeFailure(w, res, err)
		return
	}
	json.NewEncoder(w).Encode(s.animationResponse(res))
}

func (s *Server) refineHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.encodeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	quality, err := render.ParseQuality(req.Quality)
	if err != nil {
		s.encodeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.checkProvider(req.Provider); err != nil {
		s.encodeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.service.Refine(r.Context(), core.RefineRequest{
		Code:     req.Code,
		Feedback: req.Feedback,
		Quality:  quality,
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		s.writeFailure(w, res, err)
		return
	}
	json.NewEncoder(w).Encode(s.animationResponse(res))
}

func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.encodeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	quality, err := render.ParseQuality(req.Quality)
	if err != nil {
		s.encodeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.service.Rerender(r.Context(), req.Code, quality)
	if err != nil {
		s.writeFailure(w, res, err)
		return
	}
	json.NewEncoder(w).Encode(s.animationResponse(res))
}

func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.encodeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	report, err := s.service.Evaluate(r.Context(), req.Code, req.Prompt, req.Complexity)
	if err != nil {
		w.WriteHeader(statusFor(err))
		json.NewEncoder(w).Encode(evaluateResponse{Error: userMessage(err)})
		return
	}
	json.NewEncoder(w).Encode(evaluateResponse{Evaluation: report.Evaluation, Report: report.Report})
}

func (s *Server) providersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(providersResponse{Providers: s.catalog.Providers()})
}

func (s *Server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	models, err := s.catalog.Models(r.Context(), r.URL.Query().Get("provider"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, provider.ErrUnknownProvider) {
			status = http.StatusBadRequest
		}
		s.encodeError(w, err.Error(), status)
		return
	}
	json.NewEncoder(w).Encode(modelsResponse{Models: models})
}

func (s *Server) videoHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if name != filepath.Base(name) || strings.Contains(name, "..") || !strings.HasSuffix(name, ".mp4") {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.videoDir, name))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) animationResponse(res *core.Result) animationResponse {
	resp := animationResponse{
		Code:     res.Code,
		Fallback: res.Fallback,
		Summary:  res.Summary,
		VideoURL: s.videoURL(res.VideoPath),
	}
	if res.Scenario != nil {
		resp.Title = res.Scenario.Title
	}
	return resp
}

// videoURL maps a published file path to its serving URL.
func (s *Server) videoURL(path string) string {
	if path == "" {
		return ""
	}
	return "/videos/" + filepath.Base(path)
}

func (s *Server) checkProvider(name string) error {
	if name == "" || s.catalog == nil {
		return nil
	}
	for _, p := range s.catalog.Providers() {
		if p == name {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q", name)
}

// statusFor maps a failure to its HTTP status: missing credentials are
// a failed dependency, validation problems are the client's fault, and
// upstream model or renderer failures are a bad gateway.
func statusFor(err error) int {
	if provider.IsMissingKeyError(err) {
		return http.StatusFailedDependency
	}
	if errors.Is(err, provider.ErrUnknownProvider) {
		return http.StatusBadRequest
	}
	var userErr *core.UserError
	if errors.As(err, &userErr) {
		if userErr.Err == nil {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func userMessage(err error) string {
	var userErr *core.UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	return err.Error()
}

func (s *Server) writeFailure(w http.ResponseWriter, res *core.Result, err error) {
	s.logger.WithField("error", err.Error()).Warn("Request failed")
	resp := animationResponse{Error: userMessage(err)}
	if res != nil {
		resp.Code = res.Code
	}
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(resp)
}
