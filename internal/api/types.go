package api

import (
	"time"

	"github.com/mindwell/mindwell-go/internal/notification"
)

// Wire DTOs for the MindWell REST API. The backend is the source of truth
// for these shapes; mapping to the engine's model tolerates unknown enum
// values by substituting safe defaults.

type notificationDTO struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Priority  string     `json:"priority"`
	Status    string     `json:"status"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type scheduleDTO struct {
	StartTime string `json:"start_time"` // "HH:MM"
	EndTime   string `json:"end_time"`   // "HH:MM"
	Weekdays  []int  `json:"weekdays,omitempty"` // 1=Monday .. 7=Sunday
}

type preferenceDTO struct {
	ID               string       `json:"id"`
	UserID           string       `json:"user_id"`
	NotificationType string       `json:"notification_type"`
	IsEnabled        bool         `json:"is_enabled"`
	DeliveryMethod   string       `json:"delivery_method"`
	Schedule         *scheduleDTO `json:"schedule,omitempty"`
	DisabledAt       *time.Time   `json:"disabled_at,omitempty"`
}

type unreadCountDTO struct {
	Count int `json:"count"`
}

// toNotification maps a wire notification onto the engine model. Unrecognized
// type or priority strings are recovered locally with safe defaults and
// logged, never propagated as errors.
func (c *Client) toNotification(dto *notificationDTO) *notification.Notification {
	typ, ok := notification.ParseType(dto.Type)
	if !ok {
		c.logger.Warn("unrecognized notification type from backend, substituting default",
			"raw", dto.Type, "id", dto.ID)
	}
	priority, ok := notification.ParsePriority(dto.Priority)
	if !ok {
		c.logger.Warn("unrecognized notification priority from backend, substituting default",
			"raw", dto.Priority, "id", dto.ID)
	}

	status := notification.Status(dto.Status)
	if dto.ReadAt != nil {
		status = notification.StatusRead
	} else if status != notification.StatusPending {
		status = notification.StatusDelivered
	}

	return &notification.Notification{
		ID:        dto.ID,
		Type:      typ,
		Priority:  priority,
		Status:    status,
		Title:     dto.Title,
		Content:   dto.Content,
		CreatedAt: dto.CreatedAt,
		ReadAt:    dto.ReadAt,
	}
}

// toPreference maps a wire preference onto the engine model with the same
// malformed-value recovery as toNotification.
func (c *Client) toPreference(dto *preferenceDTO) *notification.Preference {
	typ, ok := notification.ParseType(dto.NotificationType)
	if !ok {
		c.logger.Warn("unrecognized preference category from backend, substituting default",
			"raw", dto.NotificationType, "id", dto.ID)
	}
	method, ok := notification.ParseDeliveryMethod(dto.DeliveryMethod)
	if !ok {
		c.logger.Warn("unrecognized delivery method from backend, substituting default",
			"raw", dto.DeliveryMethod, "id", dto.ID)
	}

	pref := &notification.Preference{
		ID:             dto.ID,
		UserID:         dto.UserID,
		Type:           typ,
		Enabled:        dto.IsEnabled,
		DeliveryMethod: method,
		DisabledAt:     dto.DisabledAt,
	}

	if dto.Schedule != nil {
		window, err := c.toTimeWindow(dto.Schedule)
		if err != nil {
			c.logger.Warn("unparseable schedule from backend, dropping it",
				"id", dto.ID, "error", err)
		} else {
			pref.Schedule = window
		}
	}
	return pref
}

func (c *Client) toTimeWindow(dto *scheduleDTO) (*notification.TimeWindow, error) {
	start, err := notification.ParseTimeOfDay(dto.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := notification.ParseTimeOfDay(dto.EndTime)
	if err != nil {
		return nil, err
	}

	window := &notification.TimeWindow{Start: start, End: end}
	for _, day := range dto.Weekdays {
		if day < 1 || day > 7 {
			c.logger.Warn("weekday out of range in schedule, skipping", "weekday", day)
			continue
		}
		// Wire weekdays are ISO (1=Monday..7=Sunday), time.Weekday counts
		// from Sunday
		window.Weekdays = append(window.Weekdays, time.Weekday(day%7))
	}
	return window, nil
}

// fromPreference maps an engine preference back onto the wire shape for
// batch updates.
func fromPreference(p *notification.Preference) *preferenceDTO {
	dto := &preferenceDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		NotificationType: string(p.Type),
		IsEnabled:        p.Enabled,
		DeliveryMethod:   string(p.DeliveryMethod),
		DisabledAt:       p.DisabledAt,
	}
	if p.Schedule != nil {
		schedule := &scheduleDTO{
			StartTime: p.Schedule.Start.String(),
			EndTime:   p.Schedule.End.String(),
		}
		for _, day := range p.Schedule.Weekdays {
			iso := int(day)
			if iso == 0 {
				iso = 7 // Sunday
			}
			schedule.Weekdays = append(schedule.Weekdays, iso)
		}
		dto.Schedule = schedule
	}
	return dto
}
