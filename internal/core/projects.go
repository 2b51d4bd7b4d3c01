package core

// projects.go drives the per-project calculation method. Both operations
// are database procedures: switch_project_calculation_method changes the
// flag and refresh_project_analytics_views rebuilds the reporting views
// that depend on it.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/otc/internal/database"
	"github.com/JonMunkholm/otc/internal/logging"
)

// ProjectStore is the remote side of project settings.
type ProjectStore interface {
	ListProjectSettings(ctx context.Context) ([]ProjectSetting, error)
	SwitchCalculationMethod(ctx context.Context, projectUUID uuid.UUID, method CalculationMethod) error
	RefreshAnalyticsViews(ctx context.Context) error
}

func (p *PostgresStore) ListProjectSettings(ctx context.Context) ([]ProjectSetting, error) {
	rows, err := p.q.ListProjectSettings(ctx)
	if err != nil {
		return nil, remoteError("list project_settings", err)
	}
	out := make([]ProjectSetting, len(rows))
	for i, r := range rows {
		out[i] = projectFromDB(r)
	}
	return out, nil
}

func projectFromDB(r db.ProjectSetting) ProjectSetting {
	s := ProjectSetting{
		Name:              r.Name,
		CalculationMethod: CalculationMethod(r.CalculationMethod),
		UpdatedAt:         r.UpdatedAt.Time,
	}
	if r.ProjectUuid.Valid {
		s.ProjectUUID = uuid.UUID(r.ProjectUuid.Bytes).String()
	}
	return s
}

func (p *PostgresStore) SwitchCalculationMethod(ctx context.Context, projectUUID uuid.UUID, method CalculationMethod) error {
	err := p.q.SwitchProjectCalculationMethod(ctx, db.SwitchProjectCalculationMethodParams{
		ProjectUuid: pgtype.UUID{Bytes: projectUUID, Valid: true},
		Method:      string(method),
	})
	return remoteError("switch_project_calculation_method", err)
}

func (p *PostgresStore) RefreshAnalyticsViews(ctx context.Context) error {
	return remoteError("refresh_project_analytics_views", p.q.RefreshProjectAnalyticsViews(ctx))
}

// ListProjectSettings returns every project ordered by name.
func (s *Service) ListProjectSettings(ctx context.Context) ([]ProjectSetting, error) {
	return s.projects.ListProjectSettings(ctx)
}

type switchRequest struct {
	ProjectUUID string `json:"project_uuid" validate:"required,uuid"`
	Method      string `json:"method" validate:"required,calc_method"`
}

// SwitchCalculationMethod sets a project's method and then refreshes the
// analytics views. A refresh failure is returned even though the switch
// itself has been saved.
func (s *Service) SwitchCalculationMethod(ctx context.Context, projectUUID string, method CalculationMethod) error {
	req := switchRequest{ProjectUUID: projectUUID, Method: string(method)}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("switch calculation method: %s", validationMessage(err))
	}
	id, err := uuid.Parse(projectUUID)
	if err != nil {
		return fmt.Errorf("switch calculation method: invalid project uuid: %s", projectUUID)
	}

	logger := logging.WithFields(ctx, "project_uuid", id.String(), "method", string(method))
	if err := s.projects.SwitchCalculationMethod(ctx, id, method); err != nil {
		logger.Error("switch calculation method failed", "error", err)
		return err
	}
	s.metrics.MethodSwitches.WithLabelValues(string(method)).Inc()
	logger.Info("calculation method switched")

	return s.RefreshAnalyticsViews(ctx)
}

// RefreshAnalyticsViews rebuilds the project analytics views, bounded by
// the configured refresh timeout.
func (s *Service) RefreshAnalyticsViews(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RefreshTimeout)
	defer cancel()

	start := time.Now()
	err := s.projects.RefreshAnalyticsViews(ctx)
	s.metrics.ViewRefreshes.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		logging.FromContext(ctx).Error("analytics refresh failed", "error", err)
		return err
	}
	logging.FromContext(ctx).Info("analytics views refreshed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// StartViewRefreshScheduler refreshes the analytics views every interval
// until ctx is cancelled. Failures are logged and the next tick retries.
// A non-positive interval returns immediately.
func (s *Service) StartViewRefreshScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	slog.Info("view refresh scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("view refresh scheduler stopped")
			return
		case <-ticker.C:
			_ = s.RefreshAnalyticsViews(ctx)
		}
	}
}
