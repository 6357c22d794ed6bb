// Package admin manages train topology: create, release, delete.
// Release is the point a train becomes bookable; nothing here touches
// seats or orders, because unreleased trains can have neither.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/railbook/rail-go/internal/catalog"
	"github.com/railbook/rail-go/internal/domain"
	redisx "github.com/railbook/rail-go/internal/redis"
	"github.com/railbook/rail-go/internal/repository"
)

type Service struct {
	catalog *catalog.Catalog
	pubsub  *redisx.TrainsPubSub
}

func New(cat *catalog.Catalog, pubsub *redisx.TrainsPubSub) *Service {
	return &Service{catalog: cat, pubsub: pubsub}
}

// AddTrain stores a new unreleased train.
//
// Returns:
//   - admin.ErrDuplicateTrain if the ID is taken.
//   - admin.ErrInvalidTrain if the definition is inconsistent.
func (s *Service) AddTrain(ctx context.Context, t *domain.Train) error {
	const op = "service.admin.AddTrain"

	if err := s.catalog.Create(t); err != nil {
		if errors.Is(err, repository.ErrDuplicateTrainID) {
			return fmt.Errorf("%s: %w", op, ErrDuplicateTrain)
		}
		if errors.Is(err, repository.ErrInvalidTrain) {
			return fmt.Errorf("%s: %w", op, ErrInvalidTrain)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ReleaseTrain opens a train for booking. One-way; a second release
// fails without re-applying.
//
// Returns:
//   - admin.ErrTrainNotFound if the train does not exist.
//   - admin.ErrAlreadyReleased on a repeat release.
func (s *Service) ReleaseTrain(ctx context.Context, id string) error {
	const op = "service.admin.ReleaseTrain"

	if err := s.catalog.Release(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTrainNotFound)
		}
		if errors.Is(err, repository.ErrAlreadyReleased) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyReleased)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.pubsub != nil {
		t, err := s.catalog.Get(id)
		if err == nil {
			_ = s.pubsub.PublishTrainChanged(ctx, id, t.SaleFirst)
		}
	}

	return nil
}

// GetTrain returns a train by ID, released or not.
//
// Returns:
//   - admin.ErrTrainNotFound if the train does not exist.
func (s *Service) GetTrain(ctx context.Context, id string) (*domain.Train, error) {
	const op = "service.admin.GetTrain"

	t, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTrainNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// DeleteTrain removes an unreleased train. Released trains can never
// be deleted: orders may reference them.
//
// Returns:
//   - admin.ErrTrainNotFound if the train does not exist.
//   - admin.ErrAlreadyReleased if the train was released.
func (s *Service) DeleteTrain(ctx context.Context, id string) error {
	const op = "service.admin.DeleteTrain"

	if err := s.catalog.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrTrainNotFound)
		}
		if errors.Is(err, repository.ErrAlreadyReleased) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyReleased)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Reset drops every train.
func (s *Service) Reset() {
	s.catalog.Reset()
}

// Snapshot returns every train, for persistence.
func (s *Service) Snapshot() []domain.Train {
	return s.catalog.Snapshot()
}
