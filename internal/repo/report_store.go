package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"keel/internal/models"
)

type ReportStore struct{ db *gorm.DB }

func NewReportStore(db *gorm.DB) *ReportStore { return &ReportStore{db: db} }

type DashboardSummary struct {
	TasksByStatus   map[string]int64 `json:"tasks_by_status"`
	TasksByPriority map[string]int64 `json:"tasks_by_priority"`
	MinutesThisWeek int64            `json:"minutes_this_week"`
	UnreadCount     int64            `json:"unread_notifications"`
	UpcomingEvents  int64            `json:"upcoming_events"`
}

// Dashboard — сводка по вызывающему пользователю.
func (s *ReportStore) Dashboard(ctx context.Context, userID uint, now time.Time) (*DashboardSummary, error) {
	out := &DashboardSummary{
		TasksByStatus:   map[string]int64{},
		TasksByPriority: map[string]int64{},
	}

	type bucket struct {
		Key string
		N   int64
	}
	var rows []bucket
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("status as key, count(*) as n").
		Where("assignee_id = ?", userID).
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.TasksByStatus[r.Key] = r.N
	}

	rows = nil
	err = s.db.WithContext(ctx).Model(&models.Task{}).
		Select("priority as key, count(*) as n").
		Where("assignee_id = ? AND status NOT IN (?, ?)",
			userID, models.TaskStatusCompleted, models.TaskStatusCancelled).
		Group("priority").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.TasksByPriority[r.Key] = r.N
	}

	weekStart := startOfWeek(now)
	var minutes *int64
	err = s.db.WithContext(ctx).Model(&models.Timesheet{}).
		Select("sum(duration)").
		Where("user_id = ? AND start_time >= ? AND end_time IS NOT NULL", userID, weekStart).
		Scan(&minutes).Error
	if err != nil {
		return nil, err
	}
	if minutes != nil {
		out.MinutesThisWeek = *minutes
	}

	err = s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&out.UnreadCount).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.CalendarEvent{}).
		Where(`starts_at >= ? AND (created_by_id = ? OR id IN (
			SELECT event_id FROM calendar_event_participants WHERE user_id = ?))`,
			now, userID, userID).
		Count(&out.UpcomingEvents).Error
	return out, err
}

func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // неделя с понедельника
	}
	day := t.Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -(weekday - 1))
}

type TimesheetReportRow struct {
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name"`
	ProjectID   *uint   `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Minutes     int64   `json:"minutes"`
	Cost        float64 `json:"cost"`
}

// TimesheetReport — агрегаты часов и стоимости по пользователю и проекту.
// cost = minutes/60 * hourly_rate; считается из той же строки, не хранится.
// Имя склеивается в Go: конкатенация строк в SQL различается между диалектами.
func (s *ReportStore) TimesheetReport(ctx context.Context, from, to time.Time) ([]TimesheetReportRow, error) {
	type reportRow struct {
		TimesheetReportRow
		FirstName string
		LastName  string
	}
	var raw []reportRow
	err := s.db.WithContext(ctx).Model(&models.Timesheet{}).
		Select(`timesheets.user_id,
			users.first_name,
			users.last_name,
			tasks.project_id,
			coalesce(projects.name, '') as project_name,
			sum(timesheets.duration) as minutes,
			sum(timesheets.duration) / 60.0 * users.hourly_rate as cost`).
		Joins("JOIN users ON users.id = timesheets.user_id").
		Joins("JOIN tasks ON tasks.id = timesheets.task_id").
		Joins("LEFT JOIN projects ON projects.id = tasks.project_id").
		Where("timesheets.start_time >= ? AND timesheets.start_time < ? AND timesheets.end_time IS NOT NULL", from, to).
		Group("timesheets.user_id, users.first_name, users.last_name, users.hourly_rate, tasks.project_id, projects.name").
		Order("timesheets.user_id, tasks.project_id").
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}
	rows := make([]TimesheetReportRow, 0, len(raw))
	for _, r := range raw {
		row := r.TimesheetReportRow
		row.UserName = strings.TrimSpace(r.FirstName + " " + r.LastName)
		rows = append(rows, row)
	}
	return rows, nil
}
