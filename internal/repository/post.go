package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"microblog/internal/models"
)

type PostRepo interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, int64, error)
}

type postRepo struct{ db *pgxpool.Pool }

func NewPostRepo(db *pgxpool.Pool) PostRepo { return &postRepo{db: db} }

const postSelect = `
	SELECT p.id, p.title, p.content, p.date_posted, p.user_id, u.username, u.image_file
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

func (r *postRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	const q = `
		INSERT INTO posts (title, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, q, p.Title, p.Content, p.UserID).Scan(&id); err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	row := r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *postRepo) Update(ctx context.Context, p *models.Post) error {
	tag, err := r.db.Exec(ctx, `UPDATE posts SET title = $1, content = $2 WHERE id = $3`, p.Title, p.Content, p.ID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) List(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, postSelect+` ORDER BY p.date_posted DESC, p.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectPosts(rows)
	return list, total, err
}

func (r *postRepo) ListByAuthor(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM posts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, postSelect+` WHERE p.user_id = $1 ORDER BY p.date_posted DESC, p.id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	list, err := collectPosts(rows)
	return list, total, err
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.DatePosted, &p.UserID, &p.Author, &p.AuthorImage); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()
	list := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
