package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/ports"
)

type GroupService struct {
	groups ports.GroupRepository
	links  ports.LinkRepository
}

func NewGroupService(groups ports.GroupRepository, links ports.LinkRepository) *GroupService {
	return &GroupService{groups: groups, links: links}
}

// ResolveGroups merges stored group rows with the group names used by links.
// Rows come first by order; names that only exist on links follow in the
// order their first link appears, numbered after the last row.
func ResolveGroups(groups []domain.Group, links []domain.Link) []domain.GroupView {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.Group]++
	}

	sorted := append([]domain.Group(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	views := make([]domain.GroupView, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	next := domain.GroupOrderBase
	for _, g := range sorted {
		if seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		views = append(views, domain.GroupView{
			ID:           g.ID,
			Name:         g.Name,
			Description:  g.Description,
			Order:        g.Order,
			Materialized: true,
			LinkCount:    counts[g.Name],
		})
		if g.Order >= next {
			next = g.Order + 1
		}
	}

	for _, l := range links {
		if seen[l.Group] {
			continue
		}
		seen[l.Group] = true
		views = append(views, domain.GroupView{
			Name:      l.Group,
			Order:     next,
			LinkCount: counts[l.Group],
		})
		next++
	}
	return views
}

func (s *GroupService) ListGroups(ctx context.Context, ownerID string) ([]domain.GroupView, error) {
	groups, err := s.groups.ListGroups(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list groups", err)
	}
	links, err := s.links.ListLinks(ctx, ownerID, false)
	if err != nil {
		return nil, storeErr("list links", err)
	}
	return ResolveGroups(groups, links), nil
}

func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if err := required("name", name); err != nil {
		return nil, err
	}
	existing, err := s.groups.GetGroupByName(ctx, ownerID, name)
	if err != nil {
		return nil, storeErr("get group", err)
	}
	if existing != nil {
		return nil, domain.Invalid("name", fmt.Sprintf("group %q already exists", name))
	}

	g := newGroup(ownerID, name, description)
	if err := s.groups.AppendGroup(ctx, g); err != nil {
		return nil, storeErr("create group", err)
	}
	return g, nil
}

// DescribeGroup sets the description of the named group, creating the row
// at the end of the list if the name has none yet.
func (s *GroupService) DescribeGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if err := required("name", name); err != nil {
		return nil, err
	}

	existing, err := s.groups.GetGroupByName(ctx, ownerID, name)
	if err != nil {
		return nil, storeErr("get group", err)
	}
	if existing == nil {
		g := newGroup(ownerID, name, description)
		appendErr := s.groups.AppendGroup(ctx, g)
		if appendErr == nil {
			return g, nil
		}
		// Lost a race with another writer for the same name
		existing, err = s.groups.GetGroupByName(ctx, ownerID, name)
		if err != nil || existing == nil {
			return nil, storeErr("describe group", appendErr)
		}
	}

	existing.Description = description
	existing.UpdatedAt = time.Now()
	if err := s.groups.UpdateGroup(ctx, existing, existing.Name); err != nil {
		return nil, storeErr("describe group", err)
	}
	return existing, nil
}

// UpdateGroup edits a stored group. A rename carries the member links along.
func (s *GroupService) UpdateGroup(ctx context.Context, ownerID, id string, patch domain.GroupPatch) (*domain.Group, error) {
	g, err := s.groups.GetGroup(ctx, ownerID, id)
	if err != nil {
		return nil, storeErr("get group", err)
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}

	previous := g.Name
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := required("name", name); err != nil {
			return nil, err
		}
		if name != previous {
			clash, err := s.groups.GetGroupByName(ctx, ownerID, name)
			if err != nil {
				return nil, storeErr("get group", err)
			}
			if clash != nil {
				return nil, domain.Invalid("name", fmt.Sprintf("group %q already exists", name))
			}
		}
		g.Name = name
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	g.UpdatedAt = time.Now()

	if err := s.groups.UpdateGroup(ctx, g, previous); err != nil {
		return nil, storeErr("update group", err)
	}
	return g, nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, ownerID, id string) error {
	ok, err := s.groups.DeleteGroup(ctx, ownerID, id)
	if err != nil {
		return storeErr("delete group", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ReorderGroups assigns positions by group name. Names that only exist on
// links get a row with the requested position.
func (s *GroupService) ReorderGroups(ctx context.Context, ownerID string, items []domain.GroupOrder) error {
	names := make(map[string]bool, len(items))
	orders := make(map[int]bool, len(items))
	for _, it := range items {
		if err := required("name", it.Name); err != nil {
			return err
		}
		if names[it.Name] {
			return domain.Invalid("items", fmt.Sprintf("duplicate group %q", it.Name))
		}
		if orders[it.Order] {
			return domain.Invalid("items", fmt.Sprintf("duplicate order %d", it.Order))
		}
		names[it.Name] = true
		orders[it.Order] = true
	}

	views, err := s.ListGroups(ctx, ownerID)
	if err != nil {
		return err
	}
	byName := make(map[string]domain.GroupView, len(views))
	for _, v := range views {
		byName[v.Name] = v
	}
	for _, it := range items {
		if _, ok := byName[it.Name]; !ok {
			return domain.ErrNotFound
		}
	}

	for _, it := range items {
		v := byName[it.Name]
		if v.Materialized {
			if v.Order == it.Order {
				continue
			}
			if err := s.groups.UpdateGroupOrder(ctx, ownerID, v.ID, it.Order); err != nil {
				return storeErr("reorder groups", err)
			}
			continue
		}
		g := newGroup(ownerID, it.Name, "")
		g.Order = it.Order
		if err := s.groups.CreateGroup(ctx, g); err != nil {
			return storeErr("materialize group", err)
		}
	}
	return nil
}

func newGroup(ownerID, name, description string) *domain.Group {
	now := time.Now()
	return &domain.Group{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
