package followup

import (
	"errors"
	"math"
	"time"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

func IsErrBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsErrUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsErrNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskWarning  RiskLevel = "warning"
	RiskWatch    RiskLevel = "watch"
)

// Settings holds a user's follow-up reminder configuration.
type Settings struct {
	ThresholdDays      int       `firestore:"thresholdDays" json:"thresholdDays"`
	CriticalMultiplier float64   `firestore:"criticalMultiplier" json:"criticalMultiplier"` // e.g. 2.0 = 2x threshold
	WatchRatio         float64   `firestore:"watchRatio" json:"watchRatio"`                 // e.g. 0.7 = 70% of threshold
	EmailEnabled       bool      `firestore:"emailEnabled" json:"emailEnabled"`
	UpdatedAt          time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// DefaultSettings returns sensible defaults
func DefaultSettings() Settings {
	return Settings{
		ThresholdDays:      10,
		CriticalMultiplier: 2.0,
		WatchRatio:         0.7,
		EmailEnabled:       false,
	}
}

// Alert flags one client that has gone quiet.
type Alert struct {
	ClientID             string    `json:"clientId"`
	Name                 string    `json:"name"`
	Email                string    `json:"email,omitempty"`
	Company              string    `json:"company,omitempty"`
	Status               string    `json:"status"`
	LastContactDate      string    `json:"lastContactDate"` // "YYYY-MM-DD" or ""
	DaysSinceLastContact int       `json:"daysSinceLastContact"` // -1 = never contacted
	RiskLevel            RiskLevel `json:"riskLevel"`
}

// AlertStats holds aggregate counts
type AlertStats struct {
	TotalClients int `json:"totalClients"`
	TotalAtRisk  int `json:"totalAtRisk"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Watch        int `json:"watch"`
}

// AlertsSummary is the response for the alerts endpoint
type AlertsSummary struct {
	Settings  Settings  `json:"settings"`
	Alerts    []Alert   `json:"alerts"`
	Stats     AlertStats `json:"stats"`
	ScannedAt time.Time `json:"scannedAt"`
}

// UpdateSettingsInput is the request body for updating settings
type UpdateSettingsInput struct {
	ThresholdDays      *int     `json:"thresholdDays,omitempty"`
	CriticalMultiplier *float64 `json:"criticalMultiplier,omitempty"`
	WatchRatio         *float64 `json:"watchRatio,omitempty"`
	EmailEnabled       *bool    `json:"emailEnabled,omitempty"`
}

// Classify maps days-since-last-contact onto a risk level, or "" when the
// client is still inside the watch window. daysSince < 0 means never
// contacted, which is always critical.
func Classify(daysSince int, s Settings) RiskLevel {
	watchThreshold := int(math.Floor(float64(s.ThresholdDays) * s.WatchRatio))
	criticalThreshold := int(math.Floor(float64(s.ThresholdDays) * s.CriticalMultiplier))

	switch {
	case daysSince < 0:
		return RiskCritical
	case daysSince >= criticalThreshold:
		return RiskCritical
	case daysSince >= s.ThresholdDays:
		return RiskWarning
	case daysSince >= watchThreshold:
		return RiskWatch
	}
	return ""
}
