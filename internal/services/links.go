package services

import (
	"context"
	"errors"
	"time"

	"linkmanager/internal/models"
	"linkmanager/pkg/utils"
)

var ErrLinkNotFound = errors.New("link not found")

// LinksService owns admin-side mutations of the link list. Probe status
// is untouched here; only the health monitor writes it.
type LinksService struct {
	settings     *SettingsService
	auditService *AuditService
	idGenerator  func() string
	now          func() time.Time
}

func NewLinksService(settings *SettingsService, auditService *AuditService) *LinksService {
	return &LinksService{
		settings:     settings,
		auditService: auditService,
		idGenerator:  utils.GenerateLinkID,
		now:          time.Now,
	}
}

// AddLink appends a new link with order = current list length.
func (s *LinksService) AddLink(ctx context.Context, name, url, description, clientIP string) (*models.Link, error) {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return nil, err
	}

	newLink := models.Link{
		ID:          s.idGenerator(),
		Name:        name,
		URL:         url,
		Description: description,
		Order:       len(links),
		Status:      models.StatusUnknown,
		LastUpdated: utils.BeijingTimeString(s.now()),
	}
	links = append(links, newLink)

	if err := s.settings.SaveLinks(ctx, links); err != nil {
		return nil, err
	}

	s.auditService.LogAction("ADD_LINK", newLink.ID, map[string]string{"name": name, "url": url}, clientIP)
	return &newLink, nil
}

// DeleteLink removes a link and re-sequences the remaining orders to
// 0..n-1, preserving relative order.
func (s *LinksService) DeleteLink(ctx context.Context, linkID, clientIP string) error {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return err
	}

	remaining := make([]models.Link, 0, len(links))
	for _, link := range links {
		if link.ID != linkID {
			remaining = append(remaining, link)
		}
	}
	if len(remaining) == len(links) {
		return ErrLinkNotFound
	}
	for i := range remaining {
		remaining[i].Order = i
	}

	if err := s.settings.SaveLinks(ctx, remaining); err != nil {
		return err
	}

	s.auditService.LogAction("DELETE_LINK", linkID, nil, clientIP)
	return nil
}

// UpdateLink replaces name/url/description of an existing link. ID,
// order and probe status survive the edit.
func (s *LinksService) UpdateLink(ctx context.Context, linkID, name, url, description, clientIP string) (*models.Link, error) {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, link := range links {
		if link.ID == linkID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrLinkNotFound
	}

	links[idx].Name = name
	links[idx].URL = url
	links[idx].Description = description
	links[idx].LastUpdated = utils.BeijingTimeString(s.now())

	if err := s.settings.SaveLinks(ctx, links); err != nil {
		return nil, err
	}

	s.auditService.LogAction("UPDATE_LINK", linkID, map[string]string{"name": name, "url": url}, clientIP)
	updated := links[idx]
	return &updated, nil
}

// ReorderLinks rewrites orders to follow orderedIDs. Links missing from
// orderedIDs keep their relative position at the end; unknown ids are
// skipped.
func (s *LinksService) ReorderLinks(ctx context.Context, orderedIDs []string, clientIP string) ([]models.Link, error) {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Link, len(links))
	for _, link := range links {
		byID[link.ID] = link
	}
	listed := make(map[string]bool, len(orderedIDs))

	reordered := make([]models.Link, 0, len(links))
	for _, id := range orderedIDs {
		link, ok := byID[id]
		if !ok {
			continue
		}
		link.Order = len(reordered)
		reordered = append(reordered, link)
		listed[id] = true
	}
	for _, link := range links {
		if !listed[link.ID] {
			link.Order = len(reordered)
			reordered = append(reordered, link)
		}
	}

	if err := s.settings.SaveLinks(ctx, reordered); err != nil {
		return nil, err
	}

	s.auditService.LogAction("REORDER_LINKS", "", orderedIDs, clientIP)
	return reordered, nil
}
