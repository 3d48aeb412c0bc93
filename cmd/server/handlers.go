package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ZanzyTHEbar/glucoscreen/internal/analysis"
	"github.com/ZanzyTHEbar/glucoscreen/internal/database"
	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/extract"
	"github.com/ZanzyTHEbar/glucoscreen/internal/locale"
	"github.com/ZanzyTHEbar/glucoscreen/internal/notify"
	"github.com/ZanzyTHEbar/glucoscreen/internal/security"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// maxHistoryLimit caps the limit query parameter of the history endpoint
const maxHistoryLimit = 200

// assessmentResponse is an assessment with its localized verdict
type assessmentResponse struct {
	*analysis.Assessment
	Verdict locale.Verdict `json:"verdict"`
}

// documentResponse pairs the extracted fields with the assessment
type documentResponse struct {
	Document   *extract.Document   `json:"document"`
	Assessment *assessmentResponse `json:"assessment,omitempty"`
}

func (a *app) localizer(c *gin.Context) locale.Localizer {
	return a.catalog.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// bindingProblems turns a gin binding failure into per-field messages
func bindingProblems(err error) map[string]string {
	problems := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			problems[fe.Field()] = fe.Tag()
		}
		return problems
	}

	problems["body"] = err.Error()
	return problems
}

// recordAssessment counts, logs and (for session callers) stores a result
func (a *app) recordAssessment(c *gin.Context, assessment *analysis.Assessment, elapsed time.Duration) {
	a.metrics.RecordAssessment(string(assessment.Source), assessment.Label, assessment.Margin, len(assessment.Advice))
	a.logger.AssessmentLogger(assessment.ID, string(assessment.Source), assessment.Label,
		assessment.Margin, len(assessment.Advice), elapsed)

	sessionID := security.SessionID(c)
	if sessionID == "" {
		return
	}
	if err := a.repo.SaveAssessment(database.NewAssessmentRecord(sessionID, assessment)); err != nil {
		a.logger.Warn("Failed to store assessment", "assessment_id", assessment.ID, "error", err)
	}
}

func (a *app) handleStartSession(c *gin.Context) {
	loc := a.localizer(c)

	session, token, err := a.sessions.StartSession(c.ClientIP(), loc.Lang())
	if err != nil {
		apperrors.Respond(c, apperrors.NewInternalError("failed to start session", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"token":      token,
		"locale":     session.Locale,
		"expires_in": int(a.cfg.Session.TTL.Seconds()),
	})
}

func (a *app) handleAssess(c *gin.Context) {
	loc := a.localizer(c)

	var req types.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidationErrorWithFields(loc.T(locale.KeyFillOutAllFields), bindingProblems(err)))
		return
	}

	start := time.Now()
	assessment, err := a.pipeline.AssessManual(req.Vector())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	a.recordAssessment(c, assessment, time.Since(start))

	c.JSON(http.StatusOK, assessmentResponse{
		Assessment: assessment,
		Verdict:    loc.Verdict(false, assessment.AtRisk),
	})
}

func (a *app) handleAssessDocument(c *gin.Context) {
	loc := a.localizer(c)

	header, err := c.FormFile("report")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "request body too large",
				"max_bytes": tooLarge.Limit,
			})
			return
		}
		apperrors.Respond(c, apperrors.NewValidationError(`a report file is required in the "report" field`, err))
		return
	}

	file, err := header.Open()
	if err != nil {
		apperrors.Respond(c, apperrors.NewDocumentParseError("uploaded report could not be opened", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apperrors.Respond(c, apperrors.NewDocumentParseError("uploaded report could not be read", err))
		return
	}

	start := time.Now()
	doc, hit, err := a.cache.Extract(data, a.extractor)
	if hit {
		a.metrics.IncrementCacheHit()
	} else {
		a.metrics.IncrementCacheMiss()
	}
	if err != nil {
		a.metrics.RecordDocument(extract.KindOf(data), "error")
		apperrors.Respond(c, err)
		return
	}
	a.logger.ExtractionLogger(doc.Kind, len(data), doc.Missing, hit, time.Since(start))

	assessment, err := a.pipeline.AssessExtracted(doc.Fields)
	if err != nil {
		if apperrors.IsCategory(err, apperrors.CategoryIncompleteVector) {
			a.metrics.RecordDocument(doc.Kind, "incomplete")
		}
		apperrors.Respond(c, err)
		return
	}
	a.metrics.RecordDocument(doc.Kind, "complete")
	a.recordAssessment(c, assessment, time.Since(start))

	c.JSON(http.StatusOK, documentResponse{
		Document: doc,
		Assessment: &assessmentResponse{
			Assessment: assessment,
			Verdict:    loc.Verdict(true, assessment.AtRisk),
		},
	})
}

func (a *app) handleListAssessments(c *gin.Context) {
	limit := database.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.Respond(c, apperrors.NewValidationError("limit must be a positive integer", raw))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := a.repo.ListAssessments(security.SessionID(c), limit)
	if err != nil {
		apperrors.Respond(c, apperrors.NewInternalError("failed to load assessment history", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": records,
		"count":       len(records),
	})
}

func (a *app) handleDeleteAssessments(c *gin.Context) {
	sessionID := security.SessionID(c)

	result, err := a.privacy.DeleteSessionData(sessionID)
	if err != nil {
		apperrors.Respond(c, apperrors.NewInternalError("failed to delete session data", err))
		return
	}

	if err := a.limiter.InvalidateSession(c.Request.Context(), sessionID); err != nil {
		a.logger.Warn("Failed to reset session rate limit", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "session data deleted",
		"deleted": result,
	})
}

func (a *app) handleContact(c *gin.Context) {
	loc := a.localizer(c)

	var req notify.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// decoded but incomplete requests get the composer's localized field report
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			apperrors.Respond(c, apperrors.NewValidationErrorWithFields(loc.T(locale.KeyFillOutAllFields), bindingProblems(err)))
			return
		}
	}

	composed, err := a.composer.Compose(security.SessionID(c), req, loc)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "contact message prepared",
		"contact": composed,
	})
}

func (a *app) handleModel(c *gin.Context) {
	summary, err := a.pipeline.Summary()
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model":  summary,
		"bounds": a.pipeline.Bounds(),
	})
}

func (a *app) handlePrivacy(c *gin.Context) {
	c.JSON(http.StatusOK, a.privacy.GetDataRetentionInfo())
}
