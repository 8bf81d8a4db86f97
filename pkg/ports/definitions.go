package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// Lookups by id are scoped to an owner: a row owned by someone else is
// reported as missing (nil, nil).

// UserRepository defines storage operations for accounts and profiles
type UserRepository interface {
	CreateAccount(ctx context.Context, user *domain.User, profile *domain.Profile, groups []domain.Group) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
}

// LinkRepository defines storage operations for links
type LinkRepository interface {
	PrependLink(ctx context.Context, link *domain.Link) error // order 0, shifts the owner's other links
	GetLink(ctx context.Context, ownerID, id string) (*domain.Link, error)
	GetLinkByID(ctx context.Context, id string) (*domain.Link, error) // public click-through
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, ownerID, id string) (bool, error) // Soft delete
	ListLinks(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Link, error)
	UpdateLinkOrder(ctx context.Context, ownerID, id string, order int) error
	Dump(ctx context.Context, ownerID string) ([]domain.Link, error) // For migration

	// Stats
	RecordVisit(ctx context.Context, visit *domain.Visit) error
	GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error)
	GetDashboardStats(ctx context.Context, ownerID string, limit int) ([]domain.Link, int64, error)
	RecordPageView(ctx context.Context, view *domain.PageView) error
	GetPageViewStats(ctx context.Context, ownerID string) (*domain.PageViewStats, error)
}

// GroupRepository defines storage operations for group metadata rows
type GroupRepository interface {
	AppendGroup(ctx context.Context, group *domain.Group) error // order = max + 1
	CreateGroup(ctx context.Context, group *domain.Group) error // order as given
	GetGroup(ctx context.Context, ownerID, id string) (*domain.Group, error)
	GetGroupByName(ctx context.Context, ownerID, name string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group, previousName string) error
	DeleteGroup(ctx context.Context, ownerID, id string) (bool, error)
	ListGroups(ctx context.Context, ownerID string) ([]domain.Group, error)
	UpdateGroupOrder(ctx context.Context, ownerID, id string, order int) error
}

// TimelineRepository defines storage operations for timeline events
type TimelineRepository interface {
	AppendTimelineEvent(ctx context.Context, event *domain.TimelineEvent) error // order = max + 1
	CreateTimelineEvent(ctx context.Context, event *domain.TimelineEvent) error // order as given
	GetTimelineEvent(ctx context.Context, ownerID, id string) (*domain.TimelineEvent, error)
	GetTimelineEventByID(ctx context.Context, id string) (*domain.TimelineEvent, error) // public media
	UpdateTimelineEvent(ctx context.Context, event *domain.TimelineEvent) error
	DeleteTimelineEvent(ctx context.Context, ownerID, id string) (bool, error)
	ListTimelineEvents(ctx context.Context, ownerID string) ([]domain.TimelineEvent, error)
	ReorderTimelineEvents(ctx context.Context, ownerID string, items []domain.OrderUpdate) error // all or nothing
}

// Repository is the whole store
type Repository interface {
	UserRepository
	LinkRepository
	GroupRepository
	TimelineRepository
	Close() error
}

// LinkService defines the business logic operations for links
type LinkService interface {
	ListLinks(ctx context.Context, ownerID string) ([]domain.Link, error)
	CreateLink(ctx context.Context, ownerID string, in domain.NewLink) (*domain.Link, error)
	UpdateLink(ctx context.Context, ownerID, id string, patch domain.LinkPatch) (*domain.Link, error)
	DeleteLink(ctx context.Context, ownerID, id string) error
	ReorderLinks(ctx context.Context, ownerID, group string, items []domain.OrderUpdate) error

	// Click-through and stats
	ResolveLink(ctx context.Context, id string) (*domain.Link, error)
	RecordVisit(ctx context.Context, link *domain.Link, referer, userAgent, ip string) error
	GetLinkStats(ctx context.Context, ownerID, id string) (*domain.LinkStats, error)
	GetDashboard(ctx context.Context, ownerID string, limit int) (*domain.Dashboard, error)
}

// GroupService defines business logic for groups
type GroupService interface {
	ListGroups(ctx context.Context, ownerID string) ([]domain.GroupView, error)
	CreateGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error)
	DescribeGroup(ctx context.Context, ownerID, name, description string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, ownerID, id string, patch domain.GroupPatch) (*domain.Group, error)
	DeleteGroup(ctx context.Context, ownerID, id string) error
	ReorderGroups(ctx context.Context, ownerID string, items []domain.GroupOrder) error
}

// TimelineService defines business logic for the story timeline
type TimelineService interface {
	ListEvents(ctx context.Context, ownerID string) ([]domain.TimelineEvent, error)
	CreateEvent(ctx context.Context, ownerID string, in domain.NewTimelineEvent) (*domain.TimelineEvent, error)
	UpdateEvent(ctx context.Context, ownerID, id string, patch domain.TimelineEventPatch) (*domain.TimelineEvent, error)
	DeleteEvent(ctx context.Context, ownerID, id string) error
	ReorderEvents(ctx context.Context, ownerID string, items []domain.OrderUpdate) error
}

// AccountService defines signup, login and profile operations
type AccountService interface {
	Signup(ctx context.Context, email, username, password, name string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	LoginWithEmail(ctx context.Context, email, name string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetProfile(ctx context.Context, ownerID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, ownerID string, patch domain.ProfilePatch) (*domain.Profile, error)
}

// PageService assembles public pages
type PageService interface {
	GetPublicPage(ctx context.Context, username string, withTimeline bool) (*domain.PublicPage, error)
	GetTimelineMedia(ctx context.Context, id string) (*domain.Media, error)
	RecordPageView(ctx context.Context, ownerID, referer, userAgent, ip string) error
}
