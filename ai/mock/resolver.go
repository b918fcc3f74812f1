package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/distillery/ai"
)

// MockResolver is a test double for ai.ImageResolver.
// References are looked up in an in-memory map.
type MockResolver struct {
	// ResolveFunc is called by Resolve if set.
	ResolveFunc func(ctx context.Context, ref string) (*ai.ImageData, error)

	images    map[string]*ai.ImageData
	callCount int
}

// NewMockResolver creates a mock resolver with no known images.
// Note: Returns concrete type to allow test assertions.
func NewMockResolver() *MockResolver {
	return &MockResolver{images: make(map[string]*ai.ImageData)}
}

// AddImage registers image content under the given reference.
func (m *MockResolver) AddImage(ref string, data []byte, mediaType string) *MockResolver {
	m.images[ref] = &ai.ImageData{Data: data, MediaType: mediaType}
	return m
}

// Resolve returns the registered content for ref, or ErrImageNotFound.
func (m *MockResolver) Resolve(ctx context.Context, ref string) (*ai.ImageData, error) {
	m.callCount++

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, ref)
	}

	if img, ok := m.images[ref]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("%w: %s", ai.ErrImageNotFound, ref)
}

// CallCount returns the number of times Resolve was called.
func (m *MockResolver) CallCount() int {
	return m.callCount
}

// Reset clears the call count, registered images, and custom function.
func (m *MockResolver) Reset() {
	m.callCount = 0
	m.images = make(map[string]*ai.ImageData)
	m.ResolveFunc = nil
}
