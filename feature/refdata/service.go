package refdata

import (
	"context"
	"fmt"

	"armory-sync/core/armory"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service imports static reference data (classes, races, realms) from the
// armory into the local store. Plain fetch-then-upsert, no identity
// reconciliation.
type Service struct {
	client armory.Client
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new refdata service.
func NewService(client armory.Client, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		db:     db,
		logger: logger,
	}
}

// Import fetches the class, race and realm indexes and upserts them.
// token is a service token for the static data endpoints; obtaining it is
// the auth subsystem's job.
func (s *Service) Import(ctx context.Context, token string) (*Report, error) {
	report := &Report{}

	classes, err := s.client.FetchPlayableClasses(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playable classes: %w", err)
	}
	if len(classes) > 0 {
		rows := make([]PlayableClass, 0, len(classes))
		for _, c := range classes {
			rows = append(rows, PlayableClass{ID: c.ID, Name: c.Name})
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert playable classes: %w", err)
		}
	}
	report.Classes = len(classes)

	races, err := s.client.FetchPlayableRaces(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playable races: %w", err)
	}
	if len(races) > 0 {
		rows := make([]PlayableRace, 0, len(races))
		for _, r := range races {
			rows = append(rows, PlayableRace{ID: r.ID, Name: r.Name})
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert playable races: %w", err)
		}
	}
	report.Races = len(races)

	realms, err := s.client.FetchRealms(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch realms: %w", err)
	}
	if len(realms) > 0 {
		rows := make([]Realm, 0, len(realms))
		for _, r := range realms {
			rows = append(rows, Realm{Slug: r.Slug, Region: r.Region, Name: r.Name})
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}, {Name: "region"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert realms: %w", err)
		}
	}
	report.Realms = len(realms)

	s.logger.Info("Reference data imported",
		zap.Int("classes", report.Classes),
		zap.Int("races", report.Races),
		zap.Int("realms", report.Realms))

	return report, nil
}
