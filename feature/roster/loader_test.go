package roster_test

import (
	"testing"

	"armory-sync/feature/roster"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	feature := roster.NewFeature(nil, nil, nil, zap.NewNop())

	assert.Equal(t, "roster", feature.Name())
	assert.True(t, feature.IsEnabled())
}
