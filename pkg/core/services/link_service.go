package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

const (
	defaultIcon  = "Globe"
	defaultGroup = "General"
)

type LinkService struct {
	repo ports.LinkRepository
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{repo: repo}
}

func (s *LinkService) ListLinks(ctx context.Context, ownerID string) ([]domain.Link, error) {
	links, err := s.repo.ListLinks(ctx, ownerID, false)
	return links, storeErr("list links", err)
}

// CreateLink puts the new link first; every other link of the owner moves
// down one position whatever its group. The group row is not created here.
func (s *LinkService) CreateLink(ctx context.Context, ownerID string, in domain.NewLink) (*domain.Link, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	if err := validURL("url", in.URL); err != nil {
		return nil, err
	}
	if in.Layout == "" {
		in.Layout = domain.LayoutClassic
	}
	if !in.Layout.Valid() {
		return nil, domain.Invalid("layout", fmt.Sprintf("unknown layout %q", in.Layout))
	}

	link := &domain.Link{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(in.Title),
		Subtitle:  in.Subtitle,
		URL:       strings.TrimSpace(in.URL),
		Icon:      in.Icon,
		Group:     strings.TrimSpace(in.Group),
		IsActive:  true,
		Layout:    in.Layout,
		Thumbnail: in.Thumbnail,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if link.Icon == "" {
		link.Icon = defaultIcon
	}
	if link.Group == "" {
		link.Group = defaultGroup
	}
	if in.IsActive != nil {
		link.IsActive = *in.IsActive
	}

	if err := s.repo.PrependLink(ctx, link); err != nil {
		return nil, storeErr("create link", err)
	}
	return link, nil
}

func (s *LinkService) UpdateLink(ctx context.Context, ownerID, id string, patch domain.LinkPatch) (*domain.Link, error) {
	link, err := s.repo.GetLink(ctx, ownerID, id)
	if err != nil {
		return nil, storeErr("get link", err)
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}

	patch.Apply(link)
	if err := required("title", link.Title); err != nil {
		return nil, err
	}
	if err := validURL("url", link.URL); err != nil {
		return nil, err
	}
	if err := required("group", link.Group); err != nil {
		return nil, err
	}
	if !link.Layout.Valid() {
		return nil, domain.Invalid("layout", fmt.Sprintf("unknown layout %q", link.Layout))
	}
	link.UpdatedAt = time.Now()

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, storeErr("update link", err)
	}
	return link, nil
}

// DeleteLink leaves sibling positions and the group row alone.
func (s *LinkService) DeleteLink(ctx context.Context, ownerID, id string) error {
	ok, err := s.repo.DeleteLink(ctx, ownerID, id)
	if err != nil {
		return storeErr("delete link", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ReorderLinks sets new positions for links of one group. Every id is
// checked before anything is written.
func (s *LinkService) ReorderLinks(ctx context.Context, ownerID, group string, items []domain.OrderUpdate) error {
	if err := required("group", group); err != nil {
		return err
	}
	if err := checkBatch(items); err != nil {
		return err
	}

	links, err := s.repo.ListLinks(ctx, ownerID, false)
	if err != nil {
		return storeErr("list links", err)
	}
	byID := make(map[string]domain.Link, len(links))
	for _, l := range links {
		byID[l.ID] = l
	}
	for _, it := range items {
		l, ok := byID[it.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if l.Group != group {
			return domain.Invalid("items", fmt.Sprintf("link %s is not in group %q", it.ID, group))
		}
	}

	for _, it := range items {
		if byID[it.ID].Order == it.Order {
			continue
		}
		if err := s.repo.UpdateLinkOrder(ctx, ownerID, it.ID, it.Order); err != nil {
			return storeErr("reorder links", err)
		}
	}
	return nil
}

// ResolveLink returns an active link for public click-through
func (s *LinkService) ResolveLink(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		return nil, storeErr("get link", err)
	}
	if link == nil || !link.IsActive {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

func (s *LinkService) RecordVisit(ctx context.Context, link *domain.Link, referer, userAgent, ip string) error {
	visit := &domain.Visit{
		LinkID:    link.ID,
		OwnerID:   link.OwnerID,
		Referer:   referer,
		UserAgent: userAgent,
		IPHash:    anonymizeIP(link.OwnerID, ip),
		CreatedAt: time.Now(),
	}
	return storeErr("record visit", s.repo.RecordVisit(ctx, visit))
}

// anonymizeIP keeps visitors of one owner distinguishable without storing the address
func anonymizeIP(ownerID, ip string) string {
	sum := sha256.Sum256([]byte(ownerID + ":" + ip))
	return hex.EncodeToString(sum[:8])
}

func (s *LinkService) GetLinkStats(ctx context.Context, ownerID, id string) (*domain.LinkStats, error) {
	link, err := s.repo.GetLink(ctx, ownerID, id)
	if err != nil {
		return nil, storeErr("get link", err)
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	stats, err := s.repo.GetLinkStats(ctx, id)
	return stats, storeErr("link stats", err)
}

const (
	defaultDashboardLimit = 10
	maxDashboardLimit     = 100
)

func (s *LinkService) GetDashboard(ctx context.Context, ownerID string, limit int) (*domain.Dashboard, error) {
	switch {
	case limit < 1:
		limit = defaultDashboardLimit
	case limit > maxDashboardLimit:
		limit = maxDashboardLimit
	}
	links, total, err := s.repo.GetDashboardStats(ctx, ownerID, limit)
	if err != nil {
		return nil, storeErr("dashboard", err)
	}
	views, err := s.repo.GetPageViewStats(ctx, ownerID)
	if err != nil {
		return nil, storeErr("page views", err)
	}

	dash := &domain.Dashboard{
		TopLinks:    links,
		TotalClicks: total,
		Views:       views.TotalViews,
		Referrers:   views.Referrers,
	}
	if views.TotalViews > 0 {
		dash.CTR = math.Round(float64(total)/float64(views.TotalViews)*1000) / 10
	}
	return dash, nil
}
