// source: projects.sql

package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listProjectSettings = `-- name: ListProjectSettings :many
SELECT project_uuid, name, calculation_method, updated_at
FROM project_settings
ORDER BY name
`

func (q *Queries) ListProjectSettings(ctx context.Context) ([]ProjectSetting, error) {
	rows, err := q.db.Query(ctx, listProjectSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProjectSetting
	for rows.Next() {
		var i ProjectSetting
		if err := rows.Scan(
			&i.ProjectUuid,
			&i.Name,
			&i.CalculationMethod,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getProjectSetting = `-- name: GetProjectSetting :one
SELECT project_uuid, name, calculation_method, updated_at
FROM project_settings
WHERE project_uuid = $1
`

func (q *Queries) GetProjectSetting(ctx context.Context, projectUuid pgtype.UUID) (ProjectSetting, error) {
	row := q.db.QueryRow(ctx, getProjectSetting, projectUuid)
	var i ProjectSetting
	err := row.Scan(
		&i.ProjectUuid,
		&i.Name,
		&i.CalculationMethod,
		&i.UpdatedAt,
	)
	return i, err
}

const switchProjectCalculationMethod = `-- name: SwitchProjectCalculationMethod :exec
SELECT switch_project_calculation_method(project_uuid => $1, method => $2)
`

type SwitchProjectCalculationMethodParams struct {
	ProjectUuid pgtype.UUID
	Method      string
}

func (q *Queries) SwitchProjectCalculationMethod(ctx context.Context, arg SwitchProjectCalculationMethodParams) error {
	_, err := q.db.Exec(ctx, switchProjectCalculationMethod, arg.ProjectUuid, arg.Method)
	return err
}

const refreshProjectAnalyticsViews = `-- name: RefreshProjectAnalyticsViews :exec
SELECT refresh_project_analytics_views()
`

func (q *Queries) RefreshProjectAnalyticsViews(ctx context.Context) error {
	_, err := q.db.Exec(ctx, refreshProjectAnalyticsViews)
	return err
}
