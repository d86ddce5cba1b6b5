package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/i18n"
)

// DefaultHistoryLimit is the number of history entries returned by default.
const DefaultHistoryLimit = codeshift.PersistedHistoryEntries

type convertRequest struct {
	Source  string   `json:"source"`
	From    string   `json:"from" binding:"required"`
	Targets []string `json:"targets" binding:"required"`
}

type resultResponse struct {
	Target      codeshift.Language     `json:"target"`
	Content     string                 `json:"content"`
	Status      string                 `json:"status"`
	Source      codeshift.Source       `json:"source"`
	Similarity  float64                `json:"similarity"`
	Confidence  float64                `json:"confidence"`
	Differences []codeshift.Difference `json:"differences,omitempty"`
}

type convertResponse struct {
	From    codeshift.Language `json:"from"`
	Results []resultResponse   `json:"results"`
	Status  string             `json:"status"`
	Stats   codeshift.Stats    `json:"stats"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) handleConvert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Targets) != 2 {
		errorJSON(c, http.StatusBadRequest, "exactly two target languages are required")
		return
	}

	langs := make([]codeshift.Language, 0, 3)
	for _, name := range append([]string{req.From}, req.Targets...) {
		lang, err := codeshift.ParseLanguage(name)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		langs = append(langs, lang)
	}

	sess := sessionFrom(c)
	res, err := sess.Convert(c.Request.Context(), req.Source, langs[0], langs[1], langs[2])
	if err != nil {
		switch {
		case errors.Is(err, codeshift.ErrBusy):
			errorJSON(c, http.StatusConflict, i18n.T(i18n.MsgBusy))
		case errors.Is(err, codeshift.ErrEmptySource):
			errorJSON(c, http.StatusBadRequest, i18n.T(i18n.MsgEmptySource))
		case errors.Is(err, codeshift.ErrSameLanguage):
			errorJSON(c, http.StatusBadRequest, i18n.T(i18n.MsgTargetsMustDiffer))
		case errors.Is(err, codeshift.ErrUnsupportedLanguage):
			errorJSON(c, http.StatusBadRequest, err.Error())
		default:
			_ = c.Error(err)
			errorJSON(c, http.StatusInternalServerError, i18n.T(i18n.MsgConversionFailed))
		}
		return
	}

	out := convertResponse{
		From:    res.From,
		Status:  res.Status,
		Stats:   s.engine.Stats(),
		Results: make([]resultResponse, 0, len(res.Results)),
	}
	for i, r := range res.Results {
		out.Results = append(out.Results, resultResponse{
			Target:      res.Targets[i],
			Content:     r.Content,
			Status:      r.Status,
			Source:      r.Source,
			Similarity:  r.Similarity,
			Confidence:  r.Confidence,
			Differences: r.Differences,
		})
	}
	c.JSON(http.StatusOK, out)
}

type languageResponse struct {
	ID        codeshift.Language `json:"id"`
	Name      string             `json:"name"`
	Extension string             `json:"extension"`
	Comment   string             `json:"comment"`
}

func (s *Server) handleLanguages(c *gin.Context) {
	langs := codeshift.SupportedLanguages()
	out := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		out = append(out, languageResponse{ID: l, Name: l.Name(), Extension: l.Extension(), Comment: l.Comment()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Settings())
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req codeshift.SettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := s.engine.PatchSettings(c.Request.Context(), req)
	switch {
	case errors.Is(err, codeshift.ErrInvalidSettings):
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"status":   i18n.T(i18n.MsgSettingsSaved),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":    s.engine.Stats(),
		"patterns": s.engine.PatternCount(),
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorJSON(c, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, s.engine.History(limit))
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.engine.Reset(c.Request.Context()); err != nil {
		_ = c.Error(err)
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": i18n.T(i18n.MsgResetDone),
		"stats":  s.engine.Stats(),
	})
}

type modelsResponse struct {
	Available bool     `json:"available"`
	Status    string   `json:"status"`
	Current   string   `json:"current"`
	Models    []string `json:"models"`
}

func (s *Server) handleModels(c *gin.Context) {
	settings := s.engine.Settings()
	out := modelsResponse{
		Current: settings.Model,
		Status:  i18n.T(i18n.MsgModelUnavailable, settings.BaseURL),
	}

	if s.models != nil {
		infos, err := s.models.ListModels(c.Request.Context(), settings.BaseURL)
		if err == nil {
			out.Available = true
			out.Status = i18n.T(i18n.MsgModelAvailable)
			for _, m := range infos {
				out.Models = append(out.Models, m.Name)
			}
		} else {
			_ = c.Error(err)
		}
	}
	if len(out.Models) == 0 {
		out.Models = append([]string(nil), codeshift.DefaultModels...)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleExportPatterns(c *gin.Context) {
	filename := fmt.Sprintf("codeshift-patterns-%s.json", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	meta := map[string]string{"generator": codeshift.Name + " " + codeshift.Version}
	if err := s.engine.ExportPatterns(c.Writer, meta); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) handleImportPatterns(c *gin.Context) {
	res, err := s.engine.ImportPatterns(c.Request.Context(), c.Request.Body)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imported": res.Imported,
		"failed":   res.Failed,
		"patterns": s.engine.PatternCount(),
		"status":   i18n.T(i18n.MsgPatternsImported, res.Imported, res.Failed),
	})
}
