// Package testmocks provides utilities for working with mocks in tests
package testmocks

import (
	"testing"

	"go.uber.org/mock/gomock"

	mocktexture "github.com/VoidMesh/noisemap/internal/testmocks/texture"
)

// MockController is a convenience wrapper around gomock.Controller
type MockController struct {
	*gomock.Controller
}

// NewMockController creates a new mock controller for the given test
func NewMockController(t *testing.T) *MockController {
	ctrl := gomock.NewController(t)

	// Ensure controller finishes properly
	t.Cleanup(ctrl.Finish)

	return &MockController{Controller: ctrl}
}

// NewQuietLogger returns a logger mock that accepts any Debug and Info call
// and returns itself from With. Warn and Error stay unexpected so tests can
// assert on them explicitly.
func NewQuietLogger(ctrl *gomock.Controller) *mocktexture.MockLoggerInterface {
	logger := mocktexture.NewMockLoggerInterface(ctrl)
	logger.EXPECT().With(gomock.Any()).Return(logger).AnyTimes()
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	return logger
}
