// internal/storage/storage_test.go
package storage_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wheelpath/engine/internal/storage"
)

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("load %q: %w", "park", storage.ErrScenarioNotFound)
	assert.True(t, errors.Is(err, storage.ErrScenarioNotFound))
	assert.False(t, errors.Is(err, storage.ErrUnsupported))
}
