package repository

import (
	"context"
	"microblog/internal/logger"
	"microblog/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// UserRepo — справочник пользователей (User Directory).
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
}

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, image_file, password_hash, created_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.WithCtx(ctx).Info("Создание пользователя (repo)", zap.String("username", user.Username))
	if user.ImageFile == "" {
		user.ImageFile = models.DefaultImageFile
	}
	query := `
	INSERT INTO users (username, email, image_file, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.ImageFile,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания пользователя (repo)", zap.Error(err))
	}
	return translate(err)
}

// Save перезаписывает изменяемые поля пользователя.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	logger.WithCtx(ctx).Info("Сохранение пользователя (repo)", zap.Int64("user_id", user.ID))
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, image_file = $3, password_hash = $4
		WHERE id = $5`,
		user.Username, user.Email, user.ImageFile, user.PasswordHash, user.ID,
	)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка сохранения пользователя (repo)", zap.Int64("user_id", user.ID), zap.Error(err))
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение пользователя по ID (repo)", zap.Int64("id", id))
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение пользователя по email (repo)", zap.String("email", logger.MaskEmail(email)))
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение пользователя по username (repo)", zap.String("username", username))
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка проверки username (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *UserRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка проверки email (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.ImageFile,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
