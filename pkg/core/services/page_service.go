package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
	"golang.org/x/sync/errgroup"
)

type PageService struct {
	repo ports.Repository
}

func NewPageService(repo ports.Repository) *PageService {
	return &PageService{repo: repo}
}

// GetPublicPage loads what a visitor sees for username. Only active links
// are listed and groups without any are left out.
func (s *PageService) GetPublicPage(ctx context.Context, username string, withTimeline bool) (*domain.PublicPage, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	var (
		profile  *domain.Profile
		links    []domain.Link
		groups   []domain.Group
		timeline []domain.TimelineEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.repo.GetProfile(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		links, err = s.repo.ListLinks(gctx, user.ID, true)
		return err
	})
	g.Go(func() (err error) {
		groups, err = s.repo.ListGroups(gctx, user.ID)
		return err
	})
	if withTimeline {
		g.Go(func() (err error) {
			timeline, err = s.repo.ListTimelineEvents(gctx, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr("load public page", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}

	page := &domain.PublicPage{
		Username: user.Username,
		Profile:  *profile,
		Groups:   []domain.GroupView{},
		Timeline: timeline,
	}

	members := make(map[string][]domain.Link)
	for _, l := range links {
		members[l.Group] = append(members[l.Group], l)
	}
	for _, v := range ResolveGroups(groups, links) {
		if len(members[v.Name]) == 0 {
			continue
		}
		v.Links = members[v.Name]
		page.Groups = append(page.Groups, v)
	}
	return page, nil
}

// PublicTimeline strips media URLs from events served to anonymous clients.
// Media stays reachable through the event's media route.
func PublicTimeline(events []domain.TimelineEvent) []domain.TimelineEvent {
	out := make([]domain.TimelineEvent, len(events))
	for i, e := range events {
		e.HasMedia = e.MediaURL != ""
		e.MediaURL = ""
		e.OwnerID = ""
		out[i] = e
	}
	return out
}

// GetTimelineMedia returns the media of a timeline event. Inline data URLs
// are decoded, anything else is returned as a URL to redirect to.
func (s *PageService) GetTimelineMedia(ctx context.Context, id string) (*domain.Media, error) {
	e, err := s.repo.GetTimelineEventByID(ctx, id)
	if err != nil {
		return nil, storeErr("get timeline event", err)
	}
	if e == nil || e.MediaURL == "" {
		return nil, domain.ErrNotFound
	}
	if !strings.HasPrefix(e.MediaURL, "data:") {
		return &domain.Media{URL: e.MediaURL}, nil
	}
	media, err := decodeDataURL(e.MediaURL)
	if err != nil {
		return nil, fmt.Errorf("timeline event %s media: %w", id, err)
	}
	return media, nil
}

// RecordPageView stores an anonymized visit to ownerID's public page
func (s *PageService) RecordPageView(ctx context.Context, ownerID, referer, userAgent, ip string) error {
	view := &domain.PageView{
		OwnerID:   ownerID,
		Referer:   referer,
		UserAgent: userAgent,
		IPHash:    anonymizeIP(ownerID, ip),
		CreatedAt: time.Now(),
	}
	return storeErr("record page view", s.repo.RecordPageView(ctx, view))
}
