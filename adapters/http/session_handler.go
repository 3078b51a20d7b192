package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khoahotran/skillpath/internal/application/usecase/media"
	"github.com/khoahotran/skillpath/internal/application/usecase/wizard"
	"github.com/khoahotran/skillpath/internal/domain/profile"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/auth"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
)

type SessionHandler struct {
	wizard       *wizard.Controller
	jwtSvc       *auth.JWTService
	publicOrigin string
	logger       logger.Logger
}

func NewSessionHandler(ctrl *wizard.Controller, jwtSvc *auth.JWTService, publicOrigin string, log logger.Logger) *SessionHandler {
	return &SessionHandler{
		wizard:       ctrl,
		jwtSvc:       jwtSvc,
		publicOrigin: strings.TrimRight(publicOrigin, "/"),
		logger:       log,
	}
}

// ShareURL is the public link for a published profile.
func (h *SessionHandler) ShareURL(shareID string) string {
	return h.publicOrigin + "/profile/" + shareID
}

func sessionID(c *gin.Context) (string, bool) {
	id, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("session not found in context", nil))
	}
	return id, ok
}

// respond writes body, or attaches err for ErrorMiddleware.
func respond(c *gin.Context, body any, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	id, p, err := h.wizard.Start(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	token, err := h.jwtSvc.GenerateToken(id)
	if err != nil {
		c.Error(apperror.NewInternal("failed to sign session token", err))
		return
	}
	c.JSON(http.StatusCreated, StartSessionResponse{SessionID: id, Token: token, Profile: p})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	p, err := h.wizard.Get(c.Request.Context(), id)
	respond(c, p, err)
}

func (h *SessionHandler) PatchSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var patch profile.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.NewInvalidInput("body must be a JSON object", err))
		return
	}
	p, err := h.wizard.Patch(c.Request.Context(), id, patch)
	respond(c, p, err)
}

func (h *SessionHandler) ResetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	p, err := h.wizard.Reset(c.Request.Context(), id)
	respond(c, p, err)
}

func (h *SessionHandler) Advance(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	p, err := h.wizard.Advance(c.Request.Context(), id)
	respond(c, p, err)
}

func (h *SessionHandler) Retreat(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	p, err := h.wizard.Retreat(c.Request.Context(), id)
	respond(c, p, err)
}

func (h *SessionHandler) GoTo(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid step request", err))
		return
	}
	p, err := h.wizard.GoTo(c.Request.Context(), id, req.Step)
	respond(c, p, err)
}

func (h *SessionHandler) SubmitBackground(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var form profile.Background
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for background", err))
		return
	}
	p, err := h.wizard.SubmitBackground(c.Request.Context(), id, form)
	respond(c, p, err)
}

func (h *SessionHandler) assessment(c *gin.Context, state *wizard.AssessmentState, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	step := profile.StepAssessment
	if state.Completed {
		step = profile.StepGapAnalysis
	}
	c.JSON(http.StatusOK, AssessmentResponse{AssessmentState: state, Step: step})
}

func (h *SessionHandler) GetAssessment(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.Questions(c.Request.Context(), id)
	h.assessment(c, state, err)
}

func (h *SessionHandler) SelectOption(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("option is required", err))
		return
	}
	state, err := h.wizard.Select(c.Request.Context(), id, req.Option)
	h.assessment(c, state, err)
}

func (h *SessionHandler) SetRating(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("rating is required", err))
		return
	}
	state, err := h.wizard.SetRating(c.Request.Context(), id, req.Rating)
	h.assessment(c, state, err)
}

func (h *SessionHandler) SetText(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid text answer", err))
		return
	}
	state, err := h.wizard.SetText(c.Request.Context(), id, req.Text)
	h.assessment(c, state, err)
}

func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.wizard.SubmitAnswer(c.Request.Context(), id)
	h.assessment(c, state, err)
}

func (h *SessionHandler) GetAnalysis(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	out, err := h.wizard.Analysis(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, AnalysisResponse{Profile: out.Profile, Fallback: out.Fallback, Stale: out.Stale})
}

func (h *SessionHandler) Upload(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	category, ok := media.ParseCategory(c.Param("category"))
	if !ok {
		c.Error(apperror.NewInvalidInput("category must be resumes or certificates", nil))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewInvalidInput("multipart form expected", err))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.Error(apperror.NewInvalidInput("'files' is required", nil))
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(apperror.NewInternal("failed to open file", err))
			return
		}
		defer f.Close()
		files = append(files, media.File{Name: fh.Filename, Content: f})
	}

	p, urls, err := h.wizard.Upload(c.Request.Context(), id, category, files)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Info("Documents uploaded", zap.String("session_id", id), zap.String("category", string(category)), zap.Int("files", len(urls)))
	c.JSON(http.StatusCreated, UploadResponse{URLs: urls, Profile: p})
}

func (h *SessionHandler) Publish(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	out, err := h.wizard.Publish(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, PublishResponse{
		ShareID:     out.ShareID,
		ShareURL:    h.ShareURL(out.ShareID),
		CompletedAt: out.Profile.CompletedAt,
		Local:       out.Local,
	})
}
