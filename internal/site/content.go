// Package site is the caching read layer between the public API handlers and
// the repositories. Reads are served from short-TTL in-process caches; admin
// write handlers call the Invalidate* methods so the public site reflects a
// change on the next request instead of after the TTL runs out.
package site

import (
	"context"
	"time"

	"github.com/masterskaya-studio/site-backend/internal/cache"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
)

const (
	keyProjectList = "projects"
	keyTeamList    = "team"
)

// Content serves cached public reads over the content repositories.
type Content struct {
	projects *repositories.ProjectRepository
	team     *repositories.TeamRepository
	seo      *repositories.SeoRepository
	settings *repositories.SettingsRepository

	projectList *cache.Cache[[]*models.Project]
	projectOne  *cache.Cache[*models.Project]
	teamList    *cache.Cache[[]*models.TeamMember]
	settingOne  *cache.Cache[*models.SiteSetting]
	seoOne      *cache.Cache[*models.PageSeo]
	blockOne    *cache.Cache[*models.GlobalBlock]
}

// NewContent builds the read layer with the given cache TTL.
func NewContent(
	projects *repositories.ProjectRepository,
	team *repositories.TeamRepository,
	seo *repositories.SeoRepository,
	settings *repositories.SettingsRepository,
	ttl time.Duration,
) *Content {
	return &Content{
		projects:    projects,
		team:        team,
		seo:         seo,
		settings:    settings,
		projectList: cache.New[[]*models.Project](ttl),
		projectOne:  cache.New[*models.Project](ttl),
		teamList:    cache.New[[]*models.TeamMember](ttl),
		settingOne:  cache.New[*models.SiteSetting](ttl),
		seoOne:      cache.New[*models.PageSeo](ttl),
		blockOne:    cache.New[*models.GlobalBlock](ttl),
	}
}

// Projects returns the full ordered project list.
func (s *Content) Projects(ctx context.Context) ([]*models.Project, error) {
	if list, ok := s.projectList.Get(keyProjectList); ok {
		return list, nil
	}
	list, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.projectList.Set(keyProjectList, list)
	return list, nil
}

// Project returns one project with relations, or (nil, nil). Misses are not
// cached, so a freshly published slug is visible immediately.
func (s *Content) Project(ctx context.Context, slug string) (*models.Project, error) {
	if p, ok := s.projectOne.Get(slug); ok {
		return p, nil
	}
	p, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p != nil {
		s.projectOne.Set(slug, p)
	}
	return p, nil
}

// Team returns the ordered team member list.
func (s *Content) Team(ctx context.Context) ([]*models.TeamMember, error) {
	if list, ok := s.teamList.Get(keyTeamList); ok {
		return list, nil
	}
	list, err := s.team.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.teamList.Set(keyTeamList, list)
	return list, nil
}

// Setting returns one settings document, or (nil, nil).
func (s *Content) Setting(ctx context.Context, key string) (*models.SiteSetting, error) {
	if v, ok := s.settingOne.Get(key); ok {
		return v, nil
	}
	v, err := s.settings.GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		s.settingOne.Set(key, v)
	}
	return v, nil
}

// PageSeo returns the SEO override for a page slug, or (nil, nil).
func (s *Content) PageSeo(ctx context.Context, slug string) (*models.PageSeo, error) {
	if v, ok := s.seoOne.Get(slug); ok {
		return v, nil
	}
	v, err := s.seo.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if v != nil {
		s.seoOne.Set(slug, v)
	}
	return v, nil
}

// Block returns one global block, or (nil, nil).
func (s *Content) Block(ctx context.Context, slug string) (*models.GlobalBlock, error) {
	if v, ok := s.blockOne.Get(slug); ok {
		return v, nil
	}
	v, err := s.settings.GetBlock(ctx, slug)
	if err != nil {
		return nil, err
	}
	if v != nil {
		s.blockOne.Set(slug, v)
	}
	return v, nil
}

// InvalidateProjects drops the project list and the given slugs. Reorders and
// media scrubs touch many rows at once, so callers with no precise slug set
// pass nothing and the whole per-slug cache is dropped.
func (s *Content) InvalidateProjects(slugs ...string) {
	s.projectList.Invalidate(keyProjectList)
	if len(slugs) == 0 {
		s.projectOne.InvalidateAll()
		return
	}
	s.projectOne.Invalidate(slugs...)
}

// InvalidateTeam drops the team list cache.
func (s *Content) InvalidateTeam() {
	s.teamList.Invalidate(keyTeamList)
}

// InvalidateSetting drops one settings document.
func (s *Content) InvalidateSetting(key string) {
	s.settingOne.Invalidate(key)
}

// InvalidatePageSeo drops one SEO override.
func (s *Content) InvalidatePageSeo(slug string) {
	s.seoOne.Invalidate(slug)
}

// InvalidateBlock drops one global block.
func (s *Content) InvalidateBlock(slug string) {
	s.blockOne.Invalidate(slug)
}

// InvalidateAll drops every cache. Used after a media asset delete, whose
// reference scrub can touch any table.
func (s *Content) InvalidateAll() {
	s.projectList.InvalidateAll()
	s.projectOne.InvalidateAll()
	s.teamList.InvalidateAll()
	s.settingOne.InvalidateAll()
	s.seoOne.InvalidateAll()
	s.blockOne.InvalidateAll()
}
