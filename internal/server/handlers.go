package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shanehull/stockchat/internal/compose"
	"github.com/shanehull/stockchat/internal/iqx"
	"github.com/shanehull/stockchat/internal/pipeline"
	"github.com/shanehull/stockchat/internal/symbols"
)

const (
	defaultNewsPageSize = 12
	maxNewsPageSize     = 50

	priceUnavailable = "Price data not available"
)

type chatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"session_id"`
	Followup  bool    `json:"followup"`
}

type chatResponse struct {
	pipeline.Answer
	SessionID string `json:"session_id"`
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "VNStock AI Chatbot API is running",
		"version": Version,
	})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		fail(c, http.StatusBadRequest, "Message is required")
		return
	}

	message := Sanitize(*req.Message)
	if message == "" {
		fail(c, http.StatusBadRequest, "Invalid message format")
		return
	}

	session := strings.TrimSpace(req.SessionID)
	if session == "" {
		session = uuid.NewString()
	}

	question := message
	if req.Followup {
		if last, ok := s.deps.History.Last(session); ok {
			question = fmt.Sprintf("Dựa trên thông tin trước đó: %s. Câu hỏi tiếp theo: %s", last.AI, message)
		}
	}

	ans := s.deps.Pipeline.Ask(c.Request.Context(), session, question)
	if ans.Success && !usableAnswer(ans.Response) {
		s.log.Warn().Str("session", session).Msg("Answer failed validation")
		ans.Response = compose.ApologyGeneration
	}

	c.JSON(http.StatusOK, chatResponse{Answer: ans, SessionID: session})
}

func (s *Server) suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "suggestions": compose.SuggestedQuestions})
}

func (s *Server) history(c *gin.Context) {
	session := c.Param("session")
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": session,
		"history":    s.deps.History.Turns(session),
	})
}

func (s *Server) clearHistory(c *gin.Context) {
	session := c.Param("session")
	s.deps.History.Clear(session)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chat history cleared", "session_id": session})
}

// tickerParam upper-cases the :symbol path parameter and checks its shape.
func tickerParam(c *gin.Context) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if !symbols.ValidFormat(sym) {
		fail(c, http.StatusBadRequest, "Invalid stock symbol format")
		return "", false
	}
	return sym, true
}

func boolQuery(c *gin.Context, key string, def bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

func (s *Server) stockInfo(c *gin.Context) {
	sym, ok := tickerParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	data := gin.H{}

	if boolQuery(c, "include_company", true) {
		if rec, err := s.deps.Stocks.Company(ctx, sym); err == nil {
			data["company"] = rec
		} else {
			s.log.Warn().Err(err).Str("symbol", sym).Msg("Company lookup failed")
		}
	}
	if boolQuery(c, "include_price", true) {
		if rec, err := s.deps.Stocks.CurrentPrice(ctx, sym); err == nil {
			data["price"] = rec
		} else {
			s.log.Warn().Err(err).Str("symbol", sym).Msg("Price lookup failed")
		}
	}
	if boolQuery(c, "include_financial", false) {
		if rec, err := s.deps.Stocks.Financials(ctx, sym, c.DefaultQuery("period", "year")); err == nil {
			data["financial"] = rec
		} else {
			s.log.Warn().Err(err).Str("symbol", sym).Msg("Financials lookup failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"symbol": sym, "data": data}})
}

func (s *Server) stockPrice(c *gin.Context) {
	sym, ok := tickerParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	start, end := c.Query("start_date"), c.Query("end_date")

	if start != "" && end != "" {
		if !validDate(start) || !validDate(end) {
			fail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		rec, err := s.deps.Stocks.PriceHistory(ctx, sym, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", sym).Msg("Price history lookup failed")
			fail(c, http.StatusNotFound, priceUnavailable)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
		return
	}

	rec, err := s.deps.Stocks.CurrentPrice(ctx, sym)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", sym).Msg("Price lookup failed")
		fail(c, http.StatusNotFound, priceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

func (s *Server) validateSymbol(c *gin.Context) {
	v := s.deps.Symbols.Validate(c.Request.Context(), c.Param("symbol"))
	c.JSON(http.StatusOK, gin.H{"success": true, "result": v})
}

func (s *Server) clearSymbolCache(c *gin.Context) {
	if err := s.deps.Symbols.ClearCache(c.Request.Context()); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear symbol cache")
		fail(c, http.StatusInternalServerError, "Failed to clear symbol cache")
		return
	}
	s.log.Info().Msg("Symbol cache cleared")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Symbol cache cleared"})
}

func (s *Server) suggestSymbols(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	c.JSON(http.StatusOK, gin.H{"success": true, "suggestions": symbols.Suggest(c.Query("q"), limit)})
}

func (s *Server) news(c *gin.Context) {
	sym := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if len(sym) < 2 {
		fail(c, http.StatusBadRequest, "Invalid stock symbol")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", c.DefaultQuery("limit", strconv.Itoa(defaultNewsPageSize))))
	if err != nil || size < 1 || size > maxNewsPageSize {
		size = defaultNewsPageSize
	}

	q := iqx.NewsQuery{
		Ticker:     sym,
		Page:       page,
		PageSize:   size,
		Sentiment:  c.Query("sentiment"),
		UpdateFrom: c.DefaultQuery("update_from", c.Query("from")),
		UpdateTo:   c.DefaultQuery("update_to", c.Query("to")),
		Source:     c.Query("newsfrom"),
	}

	rec, err := s.deps.News.News(c.Request.Context(), q)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", sym).Msg("News lookup failed")
		fail(c, http.StatusBadGateway, "Failed to fetch news")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        rec,
		"total_pages": iqx.TotalPages(rec),
	})
}
