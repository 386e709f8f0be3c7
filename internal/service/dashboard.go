package service

import (
	"context"
	"time"

	"github.com/webeat/weve/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardUpcomingEvents = 5
	dashboardRecentPhotos   = 6
)

// DashboardSources are the read paths the home screen aggregates
type DashboardSources struct {
	Users interface {
		GetByID(ctx context.Context, id string) (*model.User, error)
	}
	Events interface {
		Upcoming(ctx context.Context, scope model.Scope, today string, limit int) ([]*model.Event, error)
	}
	Todos interface {
		CountOpen(ctx context.Context, scope model.Scope) (int, error)
	}
	Photos interface {
		Recent(ctx context.Context, scope model.Scope, limit int) ([]*model.Photo, error)
	}
	Budget interface {
		Summary(ctx context.Context, scope model.Scope) (*model.ExpenseSummary, error)
	}
}

// DashboardService builds the home screen
type DashboardService struct {
	src DashboardSources
	now func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(src DashboardSources) *DashboardService {
	return &DashboardService{src: src, now: time.Now}
}

// Build gathers every dashboard section concurrently. Any failing
// section fails the whole request.
func (s *DashboardService) Build(ctx context.Context, user *model.User, scope model.Scope) (*model.Dashboard, error) {
	today := s.now()
	d := &model.Dashboard{
		Mode:           scope.Mode,
		DDay:           computeDDay(user, scope.Mode, today),
		UpcomingEvents: []*model.Event{},
		RecentPhotos:   []*model.Photo{},
	}

	g, ctx := errgroup.WithContext(ctx)

	if user.HasPartner() {
		g.Go(func() error {
			partner, err := s.src.Users.GetByID(ctx, *user.PartnerID)
			if err != nil {
				return err
			}
			if partner != nil {
				d.Partner = model.NewPartnerSummary(partner)
			}
			return nil
		})
	}
	g.Go(func() error {
		events, err := s.src.Events.Upcoming(ctx, scope, today.Format(model.DateLayout), dashboardUpcomingEvents)
		if err != nil {
			return err
		}
		if events != nil {
			d.UpcomingEvents = events
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.src.Todos.CountOpen(ctx, scope)
		d.OpenTodos = n
		return err
	})
	g.Go(func() error {
		photos, err := s.src.Photos.Recent(ctx, scope, dashboardRecentPhotos)
		if err != nil {
			return err
		}
		if photos != nil {
			d.RecentPhotos = photos
		}
		return nil
	})
	if scope.Mode == model.ModeWedding {
		g.Go(func() error {
			summary, err := s.src.Budget.Summary(ctx, scope)
			d.Budget = summary
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// computeDDay counts days until the wedding in wedding mode, and days
// since the anniversary otherwise. The anniversary itself is day 1.
func computeDDay(user *model.User, mode model.Mode, now time.Time) *model.DDay {
	today := truncateDay(now)

	if mode == model.ModeWedding {
		date, ok := parseDay(user.WeddingDate)
		if !ok {
			return nil
		}
		until := daysBetween(today, date)
		return &model.DDay{Label: "wedding", Date: *user.WeddingDate, Until: &until}
	}

	date, ok := parseDay(user.AnniversaryDate)
	if !ok {
		return nil
	}
	since := daysBetween(date, today) + 1
	return &model.DDay{Label: "anniversary", Date: *user.AnniversaryDate, Since: &since}
}

func parseDay(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(model.DateLayout, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
