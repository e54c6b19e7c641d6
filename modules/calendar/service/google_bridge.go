package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/metrics"
	"book-my-session/modules/calendar/dto"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Bridge creates a shared calendar event for a confirmed booking.
type Bridge interface {
	CreateEvent(ctx context.Context, req dto.EventRequest) (*dto.EventReference, *errors.AppError)
}

type googleBridge struct {
	creds      CredentialSource
	baseURL    string
	calendarID string
	timeout    time.Duration
}

func NewGoogleBridge(creds CredentialSource, baseURL, calendarID string) Bridge {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &googleBridge{
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		calendarID: calendarID,
		timeout:    30 * time.Second,
	}
}

func (b *googleBridge) CreateEvent(ctx context.Context, req dto.EventRequest) (*dto.EventReference, *errors.AppError) {
	ref, appErr := b.createEvent(ctx, req)
	if appErr != nil {
		metrics.RecordCalendarEvent("failed")
		return nil, appErr
	}
	metrics.RecordCalendarEvent("created")
	return ref, nil
}

func (b *googleBridge) createEvent(ctx context.Context, req dto.EventRequest) (*dto.EventReference, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	client, err := b.creds.HTTPClient(ctx, req.OwnerUserID)
	if err != nil {
		logger.Warn("GoogleBridge:CreateEvent:Credential:Error", "error", err, "owner_id", req.OwnerUserID)
		return nil, errors.NewAppError(errors.ErrDependency, "Calendar credential unavailable", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(b.baseURL+"/"))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create calendar client", err)
	}

	event := &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)},
	}
	for _, a := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a.Email, DisplayName: a.DisplayName})
	}
	if req.RequestID != "" {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             req.RequestID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
	}

	created, err := svc.Events.Insert(b.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if stderrors.As(err, &apiErr) {
			logger.Warn("GoogleBridge:CreateEvent:Status", "status", apiErr.Code, "message", apiErr.Message)
			return nil, errors.NewAppError(errors.ErrDependency, fmt.Sprintf("Calendar service returned %d", apiErr.Code), err)
		}
		logger.Warn("GoogleBridge:CreateEvent:Insert:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrDependency, "Calendar service unreachable", err)
	}
	if created.Id == "" {
		return nil, errors.NewAppError(errors.ErrDependency, "Calendar service returned no event id", nil)
	}

	logger.Info("GoogleBridge:CreateEvent:Success", "event_id", created.Id, "owner_id", req.OwnerUserID)
	return &dto.EventReference{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
		MeetLink: created.HangoutLink,
	}, nil
}
