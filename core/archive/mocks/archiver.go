package mocks

import (
	"context"

	"armory-sync/core/archive"

	"github.com/stretchr/testify/mock"
)

// Archiver is a mock implementation of archive.Archiver
type Archiver struct {
	mock.Mock
}

func (m *Archiver) StoreRunReport(ctx context.Context, report archive.RunReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
