package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tldrbot/internal/fetch"
	"tldrbot/internal/pipeline"
)

const fetchFailedCode = "fetch_failed"

type summaryRequest struct {
	Text             string `json:"text"`
	URL              string `json:"url"`
	ExtractiveLines  int    `json:"extractive_lines" binding:"omitempty,min=1,max=10"`
	AbstractiveLines int    `json:"abstractive_lines" binding:"omitempty,min=1,max=10"`
}

type summaryResponse struct {
	ExtractiveSummary  string `json:"extractive_summary"`
	AbstractiveSummary string `json:"abstractive_summary"`
	Status             string `json:"status"`
	SentenceCount      int    `json:"sentence_count"`
	Title              string `json:"title,omitempty"`
	SourceURL          string `json:"source_url,omitempty"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateSummary(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, pipeline.KindInvalidInput.String(), "Invalid request: "+err.Error(), err)
		return
	}

	if req.ExtractiveLines == 0 {
		req.ExtractiveLines = s.defaults.ExtractiveLines
	}
	if req.AbstractiveLines == 0 {
		req.AbstractiveLines = s.defaults.AbstractiveLines
	}

	resp := summaryResponse{}
	text := req.Text

	if link := strings.TrimSpace(req.URL); link != "" && strings.TrimSpace(text) == "" {
		if s.fetcher == nil {
			s.abort(c, http.StatusBadRequest, pipeline.KindInvalidInput.String(), "Fetching URLs is disabled.", nil)
			return
		}

		doc, err := s.fetcher.Fetch(c.Request.Context(), link)
		if err != nil {
			if errors.Is(err, fetch.ErrNoText) {
				s.abort(c, http.StatusUnprocessableEntity, pipeline.KindEmptyInput.String(), "No readable text found at the URL.", err)
				return
			}
			s.abort(c, http.StatusBadGateway, fetchFailedCode, "Failed to fetch the URL.", err)
			return
		}

		text = doc.Text
		resp.Title = doc.Title
		resp.SourceURL = doc.URL
	}

	result, err := s.summarizer.Run(c.Request.Context(), pipeline.Request{
		Text:             text,
		ExtractiveLines:  req.ExtractiveLines,
		AbstractiveLines: req.AbstractiveLines,
	})
	if err != nil {
		kind := pipeline.KindOf(err)
		s.abort(c, statusForKind(kind), kind.String(), pipeline.UserMessage(err), err)
		return
	}

	resp.ExtractiveSummary = result.Extractive
	resp.AbstractiveSummary = result.Abstractive
	resp.Status = string(result.Status)
	resp.SentenceCount = result.SentenceCount

	c.JSON(http.StatusOK, resp)
}

func (s *Server) abort(c *gin.Context, status int, code string, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, errorResponse{
		ErrorCode: code,
		Message:   message,
		RequestID: requestID(c),
	})
}

func statusForKind(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindEmptyInput:
		return http.StatusUnprocessableEntity
	case pipeline.KindInvalidInput:
		return http.StatusBadRequest
	case pipeline.KindLibraryFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
