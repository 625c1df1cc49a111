package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ReadingStatus string

const (
	StatusUnread    ReadingStatus = "未讀"
	StatusReading   ReadingStatus = "閱讀中"
	StatusCompleted ReadingStatus = "已完食"
	StatusDropped   ReadingStatus = "棄坑"
)

// ParseReadingStatus maps a stored status string to its enum value,
// defaulting to unread for anything unrecognized.
func ParseReadingStatus(s string) ReadingStatus {
	switch ReadingStatus(s) {
	case StatusReading, StatusCompleted, StatusDropped:
		return ReadingStatus(s)
	default:
		return StatusUnread
	}
}

// Placeholder values for AI fields. Records carrying one of these are
// picked up by the repair pass.
const (
	AIPendingSummary   = "AI 尚未分析"
	AIPendingPlot      = "AI 尚未分析"
	AIBacklogSummary   = "待補完 (請點擊重新分析)"
	AIInsufficientPlot = "資訊不足，AI 暫未分析"
)

// AISummaryPlaceholders lists every summary sentinel a record may carry.
var AISummaryPlaceholders = []string{AIPendingSummary, AIBacklogSummary}

// TagList is a set-like list of tags stored as a JSON column.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(b), nil
}

func (t *TagList) Scan(value any) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
	if len(b) == 0 {
		*t = TagList{}
		return nil
	}
	return json.Unmarshal(b, t)
}

type Book struct {
	ID     string        `gorm:"primaryKey;size:36" json:"id"`
	Title  string        `gorm:"index;size:512" json:"title"`
	Author string        `gorm:"index;size:256" json:"author"`
	Source string        `gorm:"size:128" json:"source"`
	URL    string        `gorm:"size:2048" json:"url"`
	Status ReadingStatus `gorm:"size:16;default:'未讀'" json:"status"`
	Tags   TagList       `gorm:"type:text" json:"tags"`

	AISummary      string `gorm:"type:text" json:"ai_summary"`
	OfficialDesc   string `gorm:"type:text" json:"official_desc"`
	AIPlotAnalysis string `gorm:"type:text" json:"ai_plot_analysis"`

	AddedDate     time.Time  `gorm:"index" json:"added_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	UserRating    int        `json:"user_rating"`
	UserReview    string     `gorm:"type:text" json:"user_review"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsAnalysis reports whether the book's AI fields still hold
// placeholder values and a repair pass should re-analyze it.
func (b *Book) NeedsAnalysis() bool {
	for _, p := range AISummaryPlaceholders {
		if b.AISummary == p {
			return true
		}
	}
	return b.AISummary == ""
}
