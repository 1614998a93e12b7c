package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/utils"
)

const (
	thumbnailSize = 125
	// ProfilePicsURL — префикс, по которому раздаются аватарки.
	ProfilePicsURL = "/static/profile_pics/"
)

var (
	ErrUnsupportedImage = errors.New("only jpg, jpeg and png images are allowed")
	ErrInvalidImage     = errors.New("file is not a valid image")
)

type AccountService struct {
	users     repository.UserRepo
	uploadDir string
}

func NewAccountService(users repository.UserRepo, uploadDir string) *AccountService {
	return &AccountService{users: users, uploadDir: uploadDir}
}

// Profile собирает ответ с URL аватарки.
func Profile(u *models.User) *models.UserProfileResponse {
	file := u.ImageFile
	if file == "" {
		file = models.DefaultImageFile
	}
	return &models.UserProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		ImageURL:  ProfilePicsURL + file,
		CreatedAt: u.CreatedAt,
	}
}

func (s *AccountService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Update меняет имя и email; собственные текущие значения занятыми не считаются.
func (s *AccountService) Update(ctx context.Context, userID int64, username, email string) (*models.User, error) {
	log := logger.WithCtx(ctx)
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username != user.Username {
		taken, err := s.users.IsUsernameTaken(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	if email != normalizeEmail(user.Email) {
		taken, err := s.users.IsEmailTaken(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	user.Username = username
	user.Email = email
	if err := s.users.Save(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		log.Error("Ошибка обновления профиля", zap.Error(err))
		return nil, err
	}

	log.Info("Профиль обновлён")
	return user, nil
}

// SavePicture уменьшает картинку до 125x125 (с сохранением пропорций),
// сохраняет под случайным именем и записывает имя в профиль.
func (s *AccountService) SavePicture(ctx context.Context, userID int64, filename string, r io.Reader) (*models.User, error) {
	log := logger.WithCtx(ctx)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, ErrUnsupportedImage
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(r)
	if err != nil {
		log.Warn("Не удалось декодировать изображение", zap.Error(err))
		return nil, ErrInvalidImage
	}

	name, err := utils.RandomHex(8)
	if err != nil {
		return nil, err
	}
	name += ext

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, name)
	if err := writeImage(path, ext, thumbnail(src, thumbnailSize)); err != nil {
		log.Error("Ошибка сохранения аватарки", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	old := user.ImageFile
	user.ImageFile = name
	if err := s.users.Save(ctx, user); err != nil {
		_ = os.Remove(path)
		log.Error("Ошибка сохранения профиля", zap.Error(err))
		return nil, err
	}

	if old != "" && old != models.DefaultImageFile {
		if err := os.Remove(filepath.Join(s.uploadDir, filepath.Base(old))); err != nil && !os.IsNotExist(err) {
			log.Warn("Не удалось удалить старую аватарку", zap.String("file", old), zap.Error(err))
		}
	}

	log.Info("Аватарка обновлена", zap.String("file", name))
	return user, nil
}

// EnsureDefaultPicture создаёт серую заглушку default.jpg, если её нет в каталоге загрузок.
func (s *AccountService) EnsureDefaultPicture() error {
	path := filepath.Join(s.uploadDir, models.DefaultImageFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	img := image.NewGray(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: 0xcc}), image.Point{}, draw.Src)
	return writeImage(path, ".jpg", img)
}

// thumbnail вписывает картинку в квадрат size x size; меньшие картинки не увеличиваются.
func thumbnail(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}
	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func writeImage(path, ext string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if ext == ".png" {
		return png.Encode(f, img)
	}
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}
