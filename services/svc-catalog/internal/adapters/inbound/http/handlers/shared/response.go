package shared

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	PaginationData struct {
		Page        uint `json:"page"`
		Size        uint `json:"size"`
		TotalItems  uint `json:"totalItems"`
		TotalPages  uint `json:"totalPages"`
		HasNext     bool `json:"hasNext"`
		HasPrevious bool `json:"hasPrevious"`
	}

	ResponseMeta struct {
		RequestID  string `json:"requestId,omitempty"`
		TraceID    string `json:"traceId,omitempty"`
		APIVersion string `json:"apiVersion"`
	}

	// EnvelopedResponse wraps every successful payload.
	EnvelopedResponse struct {
		Data       any             `json:"data"`
		Meta       ResponseMeta    `json:"meta"`
		Pagination *PaginationData `json:"pagination,omitempty"`
	}
)

func NewMeta(r *http.Request, apiVersion string) ResponseMeta {
	meta := ResponseMeta{
		RequestID:  middleware.GetRequestID(r.Context()),
		APIVersion: apiVersion,
	}

	if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.HasTraceID() {
		meta.TraceID = spanCtx.TraceID().String()
	}

	return meta
}

func NewPagination(p model.Pagination) *PaginationData {
	return &PaginationData{
		Page:        p.Page,
		Size:        p.Size,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
	}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func WriteData(w http.ResponseWriter, r *http.Request, status int, apiVersion string, data any, pagination *PaginationData) {
	WriteJSON(w, status, EnvelopedResponse{
		Data:       data,
		Meta:       NewMeta(r, apiVersion),
		Pagination: pagination,
	})
}
