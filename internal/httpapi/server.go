// Package httpapi exposes the OpenAI-compatible HTTP surface of the
// fixture: model listing, chat completions, and responses, plus the usual
// health and metrics endpoints. Handlers are stateless; every request
// carries its full context and routing only reads immutable structures.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fakellm/internal/alias"
	"fakellm/internal/engine"
	"fakellm/pkg/types"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes int64 = 1 << 20

// modelCreated is the fixed creation timestamp reported for every model.
const modelCreated int64 = 1677610602

const defaultTopP = 0.95

// NewMux builds the HTTP handler for one server instance.
func NewMux(rt *Router, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(metricsMiddleware)

	s := &api{rt: rt, log: log}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/models", s.handleListModels)
		v1.Post("/chat/completions", s.handleChatCompletion)
		v1.Post("/responses", s.handleResponses)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		// Models are loaded before the listener starts, so a served
		// request implies readiness.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

type api struct {
	rt  *Router
	log zerolog.Logger
}

func (s *api) handleListModels(w http.ResponseWriter, _ *http.Request) {
	list := types.ModelList{Object: "list", Data: []types.Model{}}
	for _, id := range s.rt.Canonicals() {
		list.Data = append(list.Data, types.Model{
			ID:      id,
			Object:  "model",
			Created: modelCreated,
			OwnedBy: "fakellm",
		})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *api) handleChatCompletion(w http.ResponseWriter, r *http.Request) {
	var req types.ChatCompletionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeInvalidRequest(w, "messages is required")
		return
	}
	if req.Stream {
		writeInvalidRequest(w, "streaming is not supported")
		return
	}

	entry, ok := s.route(w, r, req.Model)
	if !ok {
		return
	}

	msgs := make([]engine.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, engine.Message{Role: m.Role, Content: m.Content})
	}
	topP := defaultTopP
	if req.TopP != nil {
		topP = *req.TopP
	}
	start := time.Now()
	res, err := entry.Handle.Generate(r.Context(), engine.GenRequest{
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(topP),
	})
	if err != nil {
		s.generateError(w, r, entry.Canonical, err)
		return
	}
	s.logEnd(r, entry.Canonical, start)

	writeJSON(w, http.StatusOK, types.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   entry.Canonical,
		Choices: []types.ChatCompletionChoice{{
			Index:        0,
			Message:      types.ChatMessage{Role: "assistant", Content: res.Content},
			FinishReason: res.FinishReason,
		}},
		Usage: types.Usage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		},
	})
}

func (s *api) handleResponses(w http.ResponseWriter, r *http.Request) {
	var req types.ResponsesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msgs, err := responsesInput(req)
	if err != nil {
		writeInvalidRequest(w, err.Error())
		return
	}

	entry, ok := s.route(w, r, req.Model)
	if !ok {
		return
	}

	start := time.Now()
	res, err := entry.Handle.Generate(r.Context(), engine.GenRequest{
		Messages:    msgs,
		MaxTokens:   req.MaxOutputTokens,
		Temperature: float32(req.Temperature),
		TopP:        defaultTopP,
	})
	if err != nil {
		s.generateError(w, r, entry.Canonical, err)
		return
	}
	s.logEnd(r, entry.Canonical, start)

	writeJSON(w, http.StatusOK, types.ResponsesResponse{
		ID:        "resp-" + uuid.NewString(),
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Status:    "completed",
		Model:     entry.Canonical,
		Output: []types.ResponseOutputMessage{{
			ID:     "msg-" + uuid.NewString(),
			Type:   "message",
			Role:   "assistant",
			Status: "completed",
			Content: []types.ResponseOutputText{{
				Type: "output_text",
				Text: res.Content,
			}},
		}},
		Usage: types.ResponseUsage{
			InputTokens:  res.Usage.PromptTokens,
			OutputTokens: res.Usage.CompletionTokens,
			TotalTokens:  res.Usage.TotalTokens,
		},
	})
}

// route resolves the model name and writes the client-facing error on
// failure. Any name that does not land on a configured model becomes a
// 404 API error, whether it failed to resolve or resolved to an identifier
// that was never loaded.
func (s *api) route(w http.ResponseWriter, r *http.Request, model string) (Entry, bool) {
	if strings.TrimSpace(model) == "" {
		writeInvalidRequest(w, "model is required")
		return Entry{}, false
	}
	entry, err := s.rt.Route(model)
	if err != nil {
		if alias.IsUnknownModel(err) {
			writeAPIError(w, http.StatusNotFound,
				"model '"+model+"' not found", "invalid_request_error", "model_not_found")
			return Entry{}, false
		}
		s.log.Error().Err(err).Str("model", model).Msg("routing failed")
		writeAPIError(w, http.StatusInternalServerError, err.Error(), "server_error", "")
		return Entry{}, false
	}
	return entry, true
}

func (s *api) generateError(w http.ResponseWriter, r *http.Request, canonical string, err error) {
	// Client went away; nothing useful to write.
	if r.Context().Err() != nil {
		return
	}
	s.log.Error().Err(err).Str("model", canonical).
		Str("request_id", middleware.GetReqID(r.Context())).Msg("generation failed")
	writeAPIError(w, http.StatusInternalServerError, err.Error(), "server_error", "")
}

func (s *api) logEnd(r *http.Request, canonical string, start time.Time) {
	s.log.Info().Str("path", r.URL.Path).Str("model", canonical).
		Dur("dur", time.Since(start)).
		Str("request_id", middleware.GetReqID(r.Context())).Msg("completion served")
}

// responsesInput flattens the polymorphic `input` field into messages.
// Accepts a plain string or a list of {role, content} items where content
// is a string or a list of {type, text} parts.
func responsesInput(req types.ResponsesRequest) ([]engine.Message, error) {
	var msgs []engine.Message
	if req.Instructions != "" {
		msgs = append(msgs, engine.Message{Role: "system", Content: req.Instructions})
	}
	switch v := req.Input.(type) {
	case string:
		msgs = append(msgs, engine.Message{Role: "user", Content: v})
	case []interface{}:
		for _, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, errors.New("input items must be objects")
			}
			role, _ := obj["role"].(string)
			if role == "" {
				role = "user"
			}
			switch c := obj["content"].(type) {
			case string:
				msgs = append(msgs, engine.Message{Role: role, Content: c})
			case []interface{}:
				var b strings.Builder
				for _, part := range c {
					p, ok := part.(map[string]interface{})
					if !ok {
						return nil, errors.New("input content parts must be objects")
					}
					if text, _ := p["text"].(string); text != "" {
						b.WriteString(text)
					}
				}
				msgs = append(msgs, engine.Message{Role: role, Content: b.String()})
			default:
				return nil, errors.New("input content must be a string or a list of parts")
			}
		}
	default:
		return nil, errors.New("input is required")
	}
	if len(msgs) == 0 {
		return nil, errors.New("input is required")
	}
	return msgs, nil
}

// decodeBody enforces content type and size limits, then decodes JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeAPIError(w, http.StatusUnsupportedMediaType,
			"Content-Type must be application/json", "invalid_request_error", "")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeInvalidRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func writeInvalidRequest(w http.ResponseWriter, msg string) {
	writeAPIError(w, http.StatusBadRequest, msg, "invalid_request_error", "")
}

// writeAPIError writes the OpenAI-shaped error envelope.
func writeAPIError(w http.ResponseWriter, status int, msg, errType, code string) {
	writeJSON(w, status, types.ErrorResponse{Error: types.APIError{
		Message: msg,
		Type:    errType,
		Code:    code,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
