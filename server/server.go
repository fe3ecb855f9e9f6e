// Package server 是引擎的 HTTP 边界：守卫在入口执行，
// 领域错误在这里统一映射为 HTTP 状态码。
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/engine"
	"github.com/rushteam/tourkit/guard"
)

// Server 包装引擎并暴露 HTTP 接口。
type Server struct {
	Engine *engine.Engine
	Log    zerolog.Logger
}

// New 创建 Server。
func New(e *engine.Engine, log zerolog.Logger) *Server {
	return &Server{Engine: e, Log: log}
}

// Router 构建路由：
//
//	POST   /api/v1/recommend         行程推荐
//	POST   /api/v1/recommend/report  单楼层诊断报告（不做预算选择）
//	GET    /api/v1/tour/last         最近一次全馆行程
//	DELETE /api/v1/tour/last         清空槽位
//	GET    /health                   存活探测
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", s.handleRecommend)
		r.Post("/recommend/report", s.handleReport)
		r.Get("/tour/last", s.handleLastTour)
		r.Delete("/tour/last", s.handleClearLastTour)
	})
	return r
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	result, err := s.Engine.Recommend(r.Context(), guard.Identity(r), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.parseRequest(w, r)
	if !ok {
		return
	}
	report, err := s.Engine.Report(r.Context(), guard.Identity(r), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLastTour(w http.ResponseWriter, r *http.Request) {
	result, err := s.Engine.LastResult(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearLastTour(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.ClearLastResult(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseRequest 解析并校验请求体；失败时直接写出 400。
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (*guard.Request, bool) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("INVALID_INPUT", "request body must be a JSON object"))
		return nil, false
	}
	req, err := guard.ParsePayload(raw)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return req, true
}

// writeError 把领域错误映射为 HTTP 响应。
func (s *Server) writeError(w http.ResponseWriter, err error) {
	de := core.GetDomainError(err)
	if de == nil {
		s.Log.Error().Err(err).Msg("未分类错误")
		writeJSON(w, http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "internal error"))
		return
	}

	switch de.Code {
	case core.ErrorCodeInvalidInput:
		writeJSON(w, http.StatusBadRequest, errorBody(de.Code, de.Message))
	case core.ErrorCodeThrottled:
		w.Header().Set("Retry-After", strconv.Itoa(int(de.RetryAfter.Seconds())+1))
		writeJSON(w, http.StatusTooManyRequests, errorBody(de.Code, de.Message))
	case core.ErrorCodeNotFound:
		writeJSON(w, http.StatusNotFound, errorBody(de.Code, de.Message))
	default:
		s.Log.Error().Str("module", de.Module).Str("code", de.Code).Msg(de.Message)
		writeJSON(w, http.StatusInternalServerError, errorBody(de.Code, de.Message))
	}
}

func errorBody(code, message string) map[string]string {
	return map[string]string{"code": code, "message": message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
