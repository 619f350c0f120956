package followup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"gymdesk/backend/internal/domain/clients"
)

// ClientSource supplies the clients to scan.
type ClientSource interface {
	ListAll(ctx context.Context, userUID string) ([]clients.Client, error)
}

type Service struct {
	fs      *firestore.Client
	clients ClientSource
}

func NewService(fs *firestore.Client, clientSource ClientSource) *Service {
	return &Service{fs: fs, clients: clientSource}
}

func (s *Service) settingsRef(uid string) *firestore.DocumentRef {
	return s.fs.Collection("followupSettings").Doc(uid)
}

// GetSettings loads follow-up settings, returns defaults if not set
func (s *Service) GetSettings(ctx context.Context, uid string) (Settings, error) {
	doc, err := s.settingsRef(uid).Get(ctx)
	if err != nil {
		return DefaultSettings(), nil
	}

	var settings Settings
	if err := doc.DataTo(&settings); err != nil {
		return DefaultSettings(), nil
	}

	// Fill in missing defaults
	if settings.ThresholdDays <= 0 {
		settings.ThresholdDays = 10
	}
	if settings.CriticalMultiplier <= 0 {
		settings.CriticalMultiplier = 2.0
	}
	if settings.WatchRatio <= 0 {
		settings.WatchRatio = 0.7
	}

	return settings, nil
}

// UpdateSettings updates follow-up settings
func (s *Service) UpdateSettings(ctx context.Context, uid string, input UpdateSettingsInput) (Settings, error) {
	if input.ThresholdDays != nil && *input.ThresholdDays < 1 {
		return Settings{}, fmt.Errorf("%w: thresholdDays must be >= 1", ErrBadRequest)
	}
	if input.CriticalMultiplier != nil && *input.CriticalMultiplier < 1.0 {
		return Settings{}, fmt.Errorf("%w: criticalMultiplier must be >= 1.0", ErrBadRequest)
	}
	if input.WatchRatio != nil && (*input.WatchRatio < 0.1 || *input.WatchRatio > 1.0) {
		return Settings{}, fmt.Errorf("%w: watchRatio must be between 0.1 and 1.0", ErrBadRequest)
	}

	current, _ := s.GetSettings(ctx, uid)

	if input.ThresholdDays != nil {
		current.ThresholdDays = *input.ThresholdDays
	}
	if input.CriticalMultiplier != nil {
		current.CriticalMultiplier = *input.CriticalMultiplier
	}
	if input.WatchRatio != nil {
		current.WatchRatio = *input.WatchRatio
	}
	if input.EmailEnabled != nil {
		current.EmailEnabled = *input.EmailEnabled
	}
	current.UpdatedAt = time.Now().UTC()

	if _, err := s.settingsRef(uid).Set(ctx, current); err != nil {
		return Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	return current, nil
}

// GetAlerts scans the caller's clients and flags the ones that have gone
// quiet. Signed clients are excluded; the point is chasing open leads.
func (s *Service) GetAlerts(ctx context.Context, uid string) (*AlertsSummary, error) {
	settings, err := s.GetSettings(ctx, uid)
	if err != nil {
		return nil, err
	}

	all, err := s.clients.ListAll(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := &AlertsSummary{
		Settings:  settings,
		Alerts:    []Alert{},
		ScannedAt: now,
	}

	for _, c := range all {
		if c.Status == clients.StatusClient {
			continue
		}
		summary.Stats.TotalClients++

		daysSince := -1
		lastContact := ""
		if !c.LastContactDate.IsZero() {
			daysSince = int(now.Sub(c.LastContactDate).Hours() / 24)
			lastContact = c.LastContactDate.Format("2006-01-02")
		}

		risk := Classify(daysSince, settings)
		if risk == "" {
			continue
		}

		summary.Alerts = append(summary.Alerts, Alert{
			ClientID:             c.ID,
			Name:                 c.Name,
			Email:                c.Email,
			Company:              c.Company,
			Status:               c.Status,
			LastContactDate:      lastContact,
			DaysSinceLastContact: daysSince,
			RiskLevel:            risk,
		})

		switch risk {
		case RiskCritical:
			summary.Stats.Critical++
		case RiskWarning:
			summary.Stats.Warning++
		case RiskWatch:
			summary.Stats.Watch++
		}
	}
	summary.Stats.TotalAtRisk = len(summary.Alerts)

	// Most neglected first; never-contacted clients lead.
	sort.Slice(summary.Alerts, func(i, j int) bool {
		di, dj := summary.Alerts[i].DaysSinceLastContact, summary.Alerts[j].DaysSinceLastContact
		if di < 0 {
			return dj >= 0
		}
		if dj < 0 {
			return false
		}
		return di > dj
	})

	return summary, nil
}
