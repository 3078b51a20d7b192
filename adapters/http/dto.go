package http

import (
	"time"

	"github.com/khoahotran/skillpath/internal/application/usecase/wizard"
	"github.com/khoahotran/skillpath/internal/domain/profile"
)

type StartSessionResponse struct {
	SessionID string          `json:"session_id"`
	Token     string          `json:"token"`
	Profile   profile.Profile `json:"profile"`
}

type StepRequest struct {
	Step int `json:"step"`
}

type SelectRequest struct {
	Option string `json:"option" binding:"required"`
}

type RatingRequest struct {
	Rating int `json:"rating" binding:"required"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type AssessmentResponse struct {
	*wizard.AssessmentState
	Step int `json:"current_step"`
}

type AnalysisResponse struct {
	Profile  profile.Profile `json:"profile"`
	Fallback bool            `json:"fallback"`
	Stale    bool            `json:"stale"`
}

type PublishResponse struct {
	ShareID     string     `json:"share_id"`
	ShareURL    string     `json:"share_url"`
	CompletedAt *time.Time `json:"completed_at"`
	Local       bool       `json:"local"`
}

type UploadResponse struct {
	URLs    []string        `json:"urls"`
	Profile profile.Profile `json:"profile"`
}

type CourseURLResponse struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
