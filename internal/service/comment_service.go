package service

import (
	"context"
	"strings"

	"todo_webapp/internal/domain"
)

type CommentService struct {
	repo  CommentStore
	tasks TaskStore
}

func NewCommentService(repo CommentStore, tasks TaskStore) *CommentService {
	return &CommentService{repo: repo, tasks: tasks}
}

func (s *CommentService) Add(ctx context.Context, taskID int64, author *domain.User, body string) (*domain.Comment, error) {
	if author == nil {
		return nil, ErrNullEntity
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("comment body is required")
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, notFound("task", taskID, err)
	}

	c := &domain.Comment{
		TaskID:   taskID,
		AuthorID: author.ID,
		Author:   author.DisplayName(),
		Body:     body,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("comment", id, err)
	}
	return c, nil
}

func (s *CommentService) ListByTask(ctx context.Context, taskID int64) ([]*domain.Comment, error) {
	return s.repo.ListByTask(ctx, taskID)
}

// Delete removes a comment. Only its author or an admin may do so.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return ErrNullEntity
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return notFound("comment", id, s.repo.Delete(ctx, id))
}
