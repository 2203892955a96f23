package usecase

import (
	"context"
	"errors"
	"fmt"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/repo/cache"
	"premier-open-group/services/portal/internal/repo/persistent"
)

const (
	homePostLimit         = 3
	homeNotificationLimit = 5
)

type HomeFeed struct {
	Posts         []content.Record `json:"posts"`
	Notifications []content.Record `json:"notifications"`
}

// MemberGroup is one category of the about page.
type MemberGroup struct {
	Category string           `json:"category"`
	Members  []content.Record `json:"members"`
}

type ContentUseCase interface {
	List(ctx context.Context, contentType string, filter content.Filter) ([]content.Record, error)
	Get(ctx context.Context, contentType, id string) (content.Record, error)
	GetPostBySlug(ctx context.Context, slug string) (content.Record, error)
	Create(ctx context.Context, contentType, authorID string, input map[string]interface{}) (content.Record, error)
	Update(ctx context.Context, contentType, id string, input map[string]interface{}) (content.Record, error)
	Delete(ctx context.Context, contentType, id string) error
	HomeFeed(ctx context.Context) (*HomeFeed, error)
	AboutGroups(ctx context.Context) ([]MemberGroup, error)
}

type contentUseCase struct {
	repo   persistent.ContentRepository
	cache  cache.ContentCache
	logger *logger.Logger
}

func NewContentUseCase(repo persistent.ContentRepository, contentCache cache.ContentCache, log *logger.Logger) ContentUseCase {
	return &contentUseCase{repo: repo, cache: contentCache, logger: log}
}

func lookup(contentType string) (*content.Schema, error) {
	schema, err := content.Lookup(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, contentType)
	}
	return schema, nil
}

func (uc *contentUseCase) List(ctx context.Context, contentType string, filter content.Filter) ([]content.Record, error) {
	schema, err := lookup(contentType)
	if err != nil {
		return nil, err
	}

	entry, records, hit, err := uc.cache.Get(ctx, schema.Type, filter)
	if err != nil {
		uc.logger.Warn("Content cache read failed for %s: %v", schema.Type, err)
	} else if hit {
		return records, nil
	}

	records, err = uc.repo.List(ctx, schema, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", schema.Type, err)
	}
	if err := uc.cache.Set(ctx, entry, records); err != nil {
		uc.logger.Warn("Content cache write failed for %s: %v", schema.Type, err)
	}
	return records, nil
}

func (uc *contentUseCase) Get(ctx context.Context, contentType, id string) (content.Record, error) {
	schema, err := lookup(contentType)
	if err != nil {
		return nil, err
	}

	record, err := uc.repo.Get(ctx, schema, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return record, nil
}

// GetPostBySlug only returns published posts.
func (uc *contentUseCase) GetPostBySlug(ctx context.Context, slug string) (content.Record, error) {
	record, err := uc.repo.GetBy(ctx, content.MustLookup(content.Posts), "slug", slug)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if published, _ := record["published"].(bool); !published {
		return nil, ErrNotFound
	}
	return record, nil
}

func (uc *contentUseCase) Create(ctx context.Context, contentType, authorID string, input map[string]interface{}) (content.Record, error) {
	schema, err := lookup(contentType)
	if err != nil {
		return nil, err
	}

	record, err := schema.Normalize(input, false)
	if err != nil {
		return nil, asValidation(err)
	}
	if schema.AuthorColumn != "" && authorID != "" {
		record[schema.AuthorColumn] = authorID
	}

	created, err := uc.repo.Create(ctx, schema, record)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", schema.Type, err)
	}
	uc.invalidate(ctx, schema.Type)
	uc.logger.Info("Created %s %s", schema.Type, created.String("id"))
	return created, nil
}

func (uc *contentUseCase) Update(ctx context.Context, contentType, id string, input map[string]interface{}) (content.Record, error) {
	schema, err := lookup(contentType)
	if err != nil {
		return nil, err
	}

	changes, err := schema.Normalize(input, true)
	if err != nil {
		return nil, asValidation(err)
	}

	updated, err := uc.repo.Update(ctx, schema, id, changes)
	if err != nil {
		return nil, translateRepoError(err)
	}
	uc.invalidate(ctx, schema.Type)
	return updated, nil
}

func (uc *contentUseCase) Delete(ctx context.Context, contentType, id string) error {
	schema, err := lookup(contentType)
	if err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, schema, id); err != nil {
		return translateRepoError(err)
	}
	uc.invalidate(ctx, schema.Type)
	uc.logger.Info("Deleted %s %s", schema.Type, id)
	return nil
}

func (uc *contentUseCase) HomeFeed(ctx context.Context) (*HomeFeed, error) {
	posts, err := uc.List(ctx, string(content.Posts), content.Filter{PublishedOnly: true, Limit: homePostLimit})
	if err != nil {
		return nil, err
	}
	notifications, err := uc.List(ctx, string(content.Notifications), content.Filter{PublishedOnly: true, Limit: homeNotificationLimit})
	if err != nil {
		return nil, err
	}
	return &HomeFeed{Posts: posts, Notifications: notifications}, nil
}

// AboutGroups returns published member profiles grouped in the order of
// content.MemberCategories. Empty categories are omitted.
func (uc *contentUseCase) AboutGroups(ctx context.Context) ([]MemberGroup, error) {
	records, err := uc.List(ctx, string(content.MemberProfiles), content.Filter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]content.Record)
	for _, r := range records {
		byCategory[r.String("category")] = append(byCategory[r.String("category")], r)
	}

	var groups []MemberGroup
	for _, category := range content.MemberCategories {
		if members := byCategory[category]; len(members) > 0 {
			groups = append(groups, MemberGroup{Category: category, Members: members})
		}
	}
	return groups, nil
}

func (uc *contentUseCase) invalidate(ctx context.Context, t content.Type) {
	if err := uc.cache.Invalidate(ctx, t); err != nil {
		uc.logger.Error("Failed to invalidate %s cache: %v", t, err)
	}
}

func asValidation(err error) error {
	var fields content.FieldErrors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}

func translateRepoError(err error) error {
	if errors.Is(err, persistent.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
