package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Call types recorded in the AI call log.
const (
	CallTypeChat     = "chat"
	CallTypeFeedback = "feedback"
	CallTypeHint     = "hint"
	CallTypeVideos   = "videos"
)

// AICallLog is one dispatched provider call. Rows are written once and never updated.
type AICallLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Provider    string         `gorm:"column:provider;not null;index" json:"provider"`
	CallType    string         `gorm:"column:call_type;not null" json:"call_type"`
	Model       string         `gorm:"column:model;not null" json:"model"`
	Success     bool           `gorm:"column:success;not null" json:"success"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	LatencyMS   int64          `gorm:"column:latency_ms;not null" json:"latency_ms"`
	RequestID   string         `gorm:"column:request_id;index" json:"request_id,omitempty"`
	Personality string         `gorm:"column:personality" json:"personality,omitempty"`
	Usage       datatypes.JSON `gorm:"column:usage" json:"usage,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}

func (l *AICallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// CallUsage is the JSON stored in AICallLog.Usage.
type CallUsage struct {
	InputTokens    int    `json:"input_tokens"`
	OutputTokens   int    `json:"output_tokens"`
	Fallback       string `json:"fallback,omitempty"`
	FallbackReason string `json:"fallback_error,omitempty"`
}
