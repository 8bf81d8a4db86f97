package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type TimelineService struct {
	repo ports.TimelineRepository
}

func NewTimelineService(repo ports.TimelineRepository) *TimelineService {
	return &TimelineService{repo: repo}
}

func (s *TimelineService) ListEvents(ctx context.Context, ownerID string) ([]domain.TimelineEvent, error) {
	events, err := s.repo.ListTimelineEvents(ctx, ownerID)
	return events, storeErr("list timeline", err)
}

func validateEvent(e *domain.TimelineEvent) error {
	if err := required("title", e.Title); err != nil {
		return err
	}
	if e.Year < 1 || e.Year > 9999 {
		return domain.Invalid("year", fmt.Sprintf("%d is out of range", e.Year))
	}
	if !e.MediaType.Valid() {
		return domain.Invalid("media_type", fmt.Sprintf("unknown media type %q", e.MediaType))
	}
	if strings.HasPrefix(e.MediaURL, "data:") {
		if _, err := decodeDataURL(e.MediaURL); err != nil {
			return domain.Invalid("media_url", err.Error())
		}
		return nil
	}
	if e.MediaURL != "" {
		return validURL("media_url", e.MediaURL)
	}
	return nil
}

var dataURLPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+/-]+);base64,(.+)$`)

// decodeDataURL decodes an inline base64 image or video.
func decodeDataURL(raw string) (*domain.Media, error) {
	m := dataURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, errors.New("malformed data URL")
	}
	contentType := strings.ToLower(m[1])
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, fmt.Errorf("unsupported media type %q", contentType)
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return &domain.Media{ContentType: contentType, Data: data}, nil
}

// CreateEvent appends the event after the owner's last one
func (s *TimelineService) CreateEvent(ctx context.Context, ownerID string, in domain.NewTimelineEvent) (*domain.TimelineEvent, error) {
	now := time.Now()
	e := &domain.TimelineEvent{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Year:        in.Year,
		Description: in.Description,
		MediaURL:    strings.TrimSpace(in.MediaURL),
		MediaType:   in.MediaType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.MediaType == "" {
		e.MediaType = domain.MediaImage
	}
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	if err := s.repo.AppendTimelineEvent(ctx, e); err != nil {
		return nil, storeErr("create timeline event", err)
	}
	return e, nil
}

func (s *TimelineService) UpdateEvent(ctx context.Context, ownerID, id string, patch domain.TimelineEventPatch) (*domain.TimelineEvent, error) {
	e, err := s.repo.GetTimelineEvent(ctx, ownerID, id)
	if err != nil {
		return nil, storeErr("get timeline event", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}

	patch.Apply(e)
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Now()

	if err := s.repo.UpdateTimelineEvent(ctx, e); err != nil {
		return nil, storeErr("update timeline event", err)
	}
	return e, nil
}

func (s *TimelineService) DeleteEvent(ctx context.Context, ownerID, id string) error {
	ok, err := s.repo.DeleteTimelineEvent(ctx, ownerID, id)
	if err != nil {
		return storeErr("delete timeline event", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ReorderEvents applies the whole batch or nothing
func (s *TimelineService) ReorderEvents(ctx context.Context, ownerID string, items []domain.OrderUpdate) error {
	if err := checkBatch(items); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	events, err := s.repo.ListTimelineEvents(ctx, ownerID)
	if err != nil {
		return storeErr("list timeline", err)
	}
	owned := make(map[string]bool, len(events))
	for _, e := range events {
		owned[e.ID] = true
	}
	for _, it := range items {
		if !owned[it.ID] {
			return domain.ErrNotFound
		}
	}

	return storeErr("reorder timeline", s.repo.ReorderTimelineEvents(ctx, ownerID, items))
}
