package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/checkpoint/api/models"
	"github.com/checkpoint/api/repositories"
	"github.com/checkpoint/api/services/igdb"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockGameRepository is a mock implementation of repositories.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.VideoGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoGame, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VideoGame), args.Error(1)
}

func (m *MockGameRepository) GetByExternalID(ctx context.Context, externalID int64) (*models.VideoGame, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VideoGame), args.Error(1)
}

func (m *MockGameRepository) Update(ctx context.Context, game *models.VideoGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) List(ctx context.Context, sort repositories.GameSort, limit, offset int) ([]*models.VideoGame, error) {
	args := m.Called(ctx, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VideoGame), args.Error(1)
}

func (m *MockGameRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserGameRepository is a mock implementation of repositories.UserGameRepository
type MockUserGameRepository struct {
	mock.Mock
}

func (m *MockUserGameRepository) Create(ctx context.Context, entry *models.UserGame) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockUserGameRepository) GetByUserAndGame(ctx context.Context, userID, gameID uuid.UUID) (*models.UserGame, error) {
	args := m.Called(ctx, userID, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGame), args.Error(1)
}

func (m *MockUserGameRepository) UpdateStatus(ctx context.Context, userID, gameID uuid.UUID, status models.GameStatus) (*models.UserGame, error) {
	args := m.Called(ctx, userID, gameID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserGame), args.Error(1)
}

func (m *MockUserGameRepository) Delete(ctx context.Context, userID, gameID uuid.UUID) error {
	args := m.Called(ctx, userID, gameID)
	return args.Error(0)
}

func (m *MockUserGameRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserGame, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserGame), args.Error(1)
}

func (m *MockUserGameRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockExternalCatalog is a mock implementation of ExternalCatalog
type MockExternalCatalog struct {
	mock.Mock
}

func (m *MockExternalCatalog) Search(ctx context.Context, query string, limit int) ([]igdb.Game, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]igdb.Game), args.Error(1)
}

func (m *MockExternalCatalog) GetByID(ctx context.Context, externalID int64) (*igdb.Game, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*igdb.Game), args.Error(1)
}
