package service

import (
	"context"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/repository"
)

// FeedService composes repositories and the paginator into read-only views.
// It performs no validation and no writes.
type FeedService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	pageSize  int
}

// NewFeedService creates a new FeedService with the given page size.
// A non-positive pageSize falls back to pagination.DefaultPageSize.
func NewFeedService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &FeedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		pageSize:  pageSize,
	}
}

// PageSize returns the configured items-per-page.
func (s *FeedService) PageSize() int {
	return s.pageSize
}

// Index returns one page of the site-wide feed, newest first.
// The first page is cached briefly; writes invalidate it.
func (s *FeedService) Index(ctx context.Context, page int) (pagination.Page[*models.Post], error) {
	var posts []*models.Post
	var err error

	if page <= 1 {
		err = cache.Aside(ctx, cache.FeedIndexKey, &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.ListAll(ctx)
			return fetchErr
		})
	} else {
		posts, err = s.postRepo.ListAll(ctx)
	}
	if err != nil {
		return pagination.Page[*models.Post]{}, err
	}

	return pagination.Paginate(posts, page, s.pageSize), nil
}

// GroupFeed resolves a group by slug and returns one page of its posts.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*models.Group, pagination.Page[*models.Post], error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pagination.Page[*models.Post]{}, err
	}

	posts, err := s.postRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, pagination.Page[*models.Post]{}, err
	}

	return group, pagination.Paginate(posts, page, s.pageSize), nil
}

// Profile resolves an author by username and returns one page of their posts
// along with their total post count.
func (s *FeedService) Profile(ctx context.Context, username string, page int) (*models.User, pagination.Page[*models.Post], int64, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, pagination.Page[*models.Post]{}, 0, err
	}

	posts, err := s.postRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pagination.Page[*models.Post]{}, 0, err
	}

	return user, pagination.Paginate(posts, page, s.pageSize), int64(len(posts)), nil
}

// Detail returns a single post plus its author's total post count.
func (s *FeedService) Detail(ctx context.Context, id uint) (*models.Post, int64, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.postRepo.CountByUser(ctx, post.UserID)
	if err != nil {
		return nil, 0, err
	}

	return post, count, nil
}
