package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/maintlog/backend/internal/analytics"
	"github.com/maintlog/backend/internal/assistant"
	"github.com/maintlog/backend/internal/eval"
	"github.com/maintlog/backend/internal/search"
)

type Handler struct {
	Assistant     *assistant.Assistant
	History       *HistoryStore
	Validator     *validator.Validate
	Logger        zerolog.Logger
	AdminKey      string
	QuestionsPath string
	ResultsDir    string
}

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type SearchRequest struct {
	Query       string `json:"query" validate:"required"`
	K           int    `json:"k"`
	EquipmentID string `json:"equipment_id"`
	ProductLine string `json:"product_line"`
	SymptomCode string `json:"symptom_code"`
}

// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"work_orders": len(h.Assistant.WorkOrders),
	})
}

// @Summary Ask a question about the maintenance log
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body AskRequest true "Question"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/ask [post]
func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	answer := h.Assistant.Answer(c.Request.Context(), question)
	h.History.Push(question, answer)

	c.JSON(http.StatusOK, gin.H{
		"question": question,
		"answer":   answer,
	})
}

// @Summary Session Q/A history
// @Tags history
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/history [get]
func (h *Handler) HistoryList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.History.List()})
}

func (h *Handler) HistoryClear(c *gin.Context) {
	h.History.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ExportTxt downloads the Q/A history as a plain-text file.
func (h *Handler) ExportTxt(c *gin.Context) {
	var b strings.Builder
	b.WriteString("Maintenance Assistant - Q/A History\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	for i, item := range h.History.List() {
		fmt.Fprintf(&b, "%d. [%s]\n", i+1, item.TS.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, "Q: %s\n", item.Question)
		fmt.Fprintf(&b, "A: %s\n\n", item.Answer)
	}
	content := strings.TrimRight(b.String(), "\n") + "\n"

	c.Header("Content-Disposition", "attachment; filename=qa_history.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// @Summary Keyword search over work orders
// @Tags search
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Search request"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/search [post]
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	k := req.K
	if k == 0 {
		k = 5
	}
	f := analytics.Filters{
		EquipmentID: strings.TrimSpace(req.EquipmentID),
		ProductLine: strings.TrimSpace(req.ProductLine),
		SymptomCode: strings.TrimSpace(req.SymptomCode),
	}

	results, err := search.Search(h.Assistant.WorkOrders, req.Query, k, f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_QUERY", "Query has no searchable terms", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     results,
		"formatted": search.FormatResults(req.Query, results, k),
	})
}

// @Summary Run the fixed question suite
// @Tags eval
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/eval/run [post]
func (h *Handler) EvalRun(c *gin.Context) {
	suite, err := eval.LoadSuite(h.QuestionsPath)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SUITE_ERROR", "Failed to load question suite", err.Error())
		return
	}

	runner := eval.Runner{Assistant: h.Assistant, Logger: h.Logger}
	report := runner.Run(c.Request.Context(), suite)

	txtPath, jsonPath, err := eval.WriteReport(h.ResultsDir, report)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "REPORT_ERROR", "Failed to write results", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"single_turn":  len(report.SingleTurn),
		"multi_turn":   len(report.MultiTurn),
		"results_txt":  txtPath,
		"results_json": jsonPath,
	})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
