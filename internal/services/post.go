package services

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repository"
)

const PostsPerPage = 5

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
	ErrEmptyPost    = errors.New("title and content are required")
)

type PostService struct {
	posts  repository.PostRepo
	users  repository.UserRepo
	policy *bluemonday.Policy
}

func NewPostService(posts repository.PostRepo, users repository.UserRepo) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		policy: bluemonday.StrictPolicy(),
	}
}

// clean убирает HTML: посты хранятся как обычный текст.
// Sanitize экранирует кавычки и амперсанды, поэтому результат разэкранируется обратно.
func (s *PostService) clean(title, content string) (string, string, error) {
	title = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(title)))
	content = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(content)))
	if title == "" || content == "" {
		return "", "", ErrEmptyPost
	}
	return title, content, nil
}

func (s *PostService) Create(ctx context.Context, authorID int64, title, content string) (*models.Post, error) {
	title, content, err := s.clean(title, content)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.Create(ctx, &models.Post{Title: title, Content: content, UserID: authorID})
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания поста", zap.Error(err))
		return nil, err
	}
	logger.WithCtx(ctx).Info("Пост создан", zap.Int64("post_id", post.ID))
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// owned загружает пост и проверяет, что actorID — автор.
func (s *PostService) owned(ctx context.Context, actorID, id int64) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		logger.WithCtx(ctx).Warn("Попытка изменить чужой пост", zap.Int64("post_id", id))
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actorID, id int64, title, content string) (*models.Post, error) {
	post, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	title, content, err = s.clean(title, content)
	if err != nil {
		return nil, err
	}
	post.Title, post.Content = title, content
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка обновления поста", zap.Int64("post_id", id), zap.Error(err))
		return nil, err
	}
	logger.WithCtx(ctx).Info("Пост обновлён", zap.Int64("post_id", id))
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка удаления поста", zap.Int64("post_id", id), zap.Error(err))
		return err
	}
	logger.WithCtx(ctx).Info("Пост удалён", zap.Int64("post_id", id))
	return nil
}

// List — лента всех постов, новые первыми.
func (s *PostService) List(ctx context.Context, page int) (models.Page[*models.Post], error) {
	page = clampPage(page)
	items, total, err := s.posts.List(ctx, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения ленты", zap.Error(err))
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(items, page, PostsPerPage, total), nil
}

func (s *PostService) ListByUser(ctx context.Context, username string, page int) (models.Page[*models.Post], error) {
	page = clampPage(page)
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Page[*models.Post]{}, ErrUserNotFound
		}
		return models.Page[*models.Post]{}, err
	}
	items, total, err := s.posts.ListByAuthor(ctx, user.ID, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения постов пользователя", zap.Int64("author_id", user.ID), zap.Error(err))
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(items, page, PostsPerPage, total), nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
