package discount

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type mockCodeSource struct {
	codes []Code
	err   error
}

func (m *mockCodeSource) FindActive(_ context.Context, userID uint, code string) (*Code, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.codes {
		c := m.codes[i]
		if c.UserID == userID && c.Code == code && c.Status == CodeStatusActive {
			return &c, nil
		}
	}
	return nil, nil
}

type mockAppliedStore struct {
	m       sync.Mutex
	applied map[string]*Applied
	err     error
}

func newMockAppliedStore() *mockAppliedStore {
	return &mockAppliedStore{applied: map[string]*Applied{}}
}

func (m *mockAppliedStore) Get(_ context.Context, token string) (*Applied, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.applied[token], nil
}

func (m *mockAppliedStore) Set(_ context.Context, token string, applied *Applied) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.applied[token] = applied
	return nil
}

func (m *mockAppliedStore) Del(_ context.Context, token string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.applied, token)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testEngine(codes []Code) (*Engine, *mockAppliedStore) {
	store := newMockAppliedStore()
	return NewEngine(&mockCodeSource{codes: codes}, store, testLogger()), store
}

func uintPtr(v uint) *uint { return &v }

func TestApplyValidCode(t *testing.T) {
	engine, _ := testEngine([]Code{
		{UserID: 1, Code: "SAVE10", Percent: 10, ExpiresAt: now.Add(time.Hour), Status: CodeStatusActive},
	})

	applied, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	require.NoError(t, err)
	assert.Equal(t, &Applied{Percent: 10, Code: "SAVE10"}, applied)
}

func TestApplyRequiresAuthentication(t *testing.T) {
	engine, _ := testEngine(nil)

	_, err := engine.Apply(context.Background(), nil, "session-1", "SAVE10", now)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestApplyUnknownCode(t *testing.T) {
	engine, _ := testEngine(nil)

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "NOPE", now)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestApplyWrongUserCode(t *testing.T) {
	engine, _ := testEngine([]Code{
		{UserID: 2, Code: "SAVE10", Percent: 10, ExpiresAt: now.Add(time.Hour), Status: CodeStatusActive},
	})

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestApplyUsedCode(t *testing.T) {
	engine, _ := testEngine([]Code{
		{UserID: 1, Code: "SAVE10", Percent: 10, ExpiresAt: now.Add(time.Hour), Status: CodeStatusUsed},
	})

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestApplyExpiredCode(t *testing.T) {
	// Active status but expired by time: status and expiry are independent
	engine, store := testEngine([]Code{
		{UserID: 1, Code: "SAVE10", Percent: 10, ExpiresAt: now.Add(-time.Minute), Status: CodeStatusActive},
		{UserID: 1, Code: "EDGE", Percent: 10, ExpiresAt: now, Status: CodeStatusActive},
	})

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	assert.ErrorIs(t, err, ErrCodeExpired)

	_, err = engine.Apply(context.Background(), uintPtr(1), "session-1", "EDGE", now)
	assert.ErrorIs(t, err, ErrCodeExpired)

	// Rejection never mutates session state
	applied, err := store.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Nil(t, applied)
}

func TestApplySingleApplication(t *testing.T) {
	engine, _ := testEngine([]Code{
		{UserID: 1, Code: "FIRST", Percent: 10, ExpiresAt: now.Add(time.Hour), Status: CodeStatusActive},
		{UserID: 1, Code: "SECOND", Percent: 20, ExpiresAt: now.Add(time.Hour), Status: CodeStatusActive},
	})

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "FIRST", now)
	require.NoError(t, err)

	// Applying a second valid code without clearing is rejected; the first
	// code's percent stays recorded.
	applied, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SECOND", now)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	require.NotNil(t, applied)
	assert.Equal(t, "FIRST", applied.Code)
	assert.Equal(t, 10, applied.Percent)
}

func TestClearIsIdempotent(t *testing.T) {
	engine, _ := testEngine([]Code{
		{UserID: 1, Code: "SAVE10", Percent: 10, ExpiresAt: now.Add(time.Hour), Status: CodeStatusActive},
	})

	_, err := engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	require.NoError(t, err)

	require.NoError(t, engine.Clear(context.Background(), "session-1"))
	require.NoError(t, engine.Clear(context.Background(), "session-1"))

	applied, err := engine.GetApplied(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Nil(t, applied)

	// A new code can be applied after clearing
	_, err = engine.Apply(context.Background(), uintPtr(1), "session-1", "SAVE10", now)
	assert.NoError(t, err)
}

func TestAppliedJSONRoundTrip(t *testing.T) {
	applied := Applied{Percent: 10, Code: "SAVE10"}

	data, err := json.Marshal(applied)
	require.NoError(t, err)
	assert.JSONEq(t, `{"percent":10,"code":"SAVE10"}`, string(data))

	var decoded Applied
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, applied, decoded)
}
