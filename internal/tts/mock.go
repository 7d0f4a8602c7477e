package tts

import (
	"context"
	"fmt"
	"sync"
)

// MockSpeaker returns deterministic audio bytes. It records every call and
// can be told to fail specific calls.
type MockSpeaker struct {
	mu     sync.Mutex
	inputs []string
	fail   map[int]error
}

// NewMockSpeaker creates a mock speaker
func NewMockSpeaker() *MockSpeaker {
	return &MockSpeaker{fail: make(map[int]error)}
}

// GetName returns the provider name
func (m *MockSpeaker) GetName() string {
	return string(ProviderMock)
}

// FailCall makes the call with the given zero-based index return err
func (m *MockSpeaker) FailCall(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[index] = err
}

// Inputs returns the texts passed to Synthesize so far
func (m *MockSpeaker) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// Synthesize returns "[<index>:<chars>]" as the audio for each call
func (m *MockSpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	index := len(m.inputs)
	m.inputs = append(m.inputs, text)
	if err, ok := m.fail[index]; ok {
		return nil, err
	}
	return []byte(fmt.Sprintf("[%d:%d]", index, len([]rune(text)))), nil
}
