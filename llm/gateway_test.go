package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient is a mock implementation of the chat client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestGateway(t *testing.T, client Client) (*Gateway, *int) {
	reg := provider.NewEmptyRegistry(nil, logger.NewNullLogger())
	err := reg.Register(provider.Descriptor{
		Name:         "acme",
		Kind:         provider.KindOpenAI,
		KeyEnv:       "ACME_TEST_API_KEY",
		DefaultModel: "acme-small",
	})
	require.NoError(t, err)

	g := NewGateway(GatewayConfig{
		Registry:        reg,
		Credentials:     provider.Credentials{Explicit: map[string]string{"acme": "test-key"}},
		DefaultProvider: "acme",
	})

	factoryCalls := 0
	g.newClient = func(ctx context.Context, d provider.Descriptor, key string) (Client, error) {
		factoryCalls++
		return client, nil
	}
	g.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return g, &factoryCalls
}

func TestGateway_CompleteChat(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req ChatRequest) bool {
		return req.Model == "acme-small"
	})).Return("  a circle drawn in blue \n", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	res, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "describe a circle"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a circle drawn in blue", res)
	mockClient.AssertExpectations(t)
}

func TestGateway_ModelOverride(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.MatchedBy(func(req ChatRequest) bool {
		return req.Model == "acme-xl"
	})).Return("ok", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Model:    "acme-xl",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestGateway_RetriesTransientErrors(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &RateLimitError{Provider: "acme"}).Twice()
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("recovered", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	res, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", res)
	mockClient.AssertNumberOfCalls(t, "CompleteChat", 3)
}

func TestGateway_RetriesExhausted(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", &UnavailableError{Provider: "acme", Status: 503})

	g, _ := newTestGateway(t, mockClient)

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
	mockClient.AssertNumberOfCalls(t, "CompleteChat", 3)
}

func TestGateway_NoRetryOnPermanentError(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("unauthorized: invalid acme API key")).Once()

	g, _ := newTestGateway(t, mockClient)

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	mockClient.AssertNumberOfCalls(t, "CompleteChat", 1)
}

func TestGateway_EmptyCompletionIsMalformed(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).Return("  \n\t ", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestGateway_UnknownProvider(t *testing.T) {
	g, _ := newTestGateway(t, new(MockClient))

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Provider: "nope",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestGateway_MissingCredential(t *testing.T) {
	reg := provider.NewEmptyRegistry(nil, logger.NewNullLogger())
	require.NoError(t, reg.Register(provider.Descriptor{
		Name:         "acme",
		Kind:         provider.KindOpenAI,
		KeyEnv:       "ACME_TEST_KEY_UNSET",
		DefaultModel: "acme-small",
	}))

	g := NewGateway(GatewayConfig{
		Registry:        reg,
		DefaultProvider: "acme",
	})

	_, err := g.CompleteChat(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, provider.IsMissingKeyError(err))
}

func TestGateway_ClientCachedPerCredential(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).Return("ok", nil)

	g, factoryCalls := newTestGateway(t, mockClient)

	for i := 0; i < 3; i++ {
		_, err := g.CompleteChat(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *factoryCalls)
}

func TestGateway_CompleteObject(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("Sure, here it is:\n```json\n{\"title\": \"Circle Motion\", \"elements\": [\"circle\", \"text\"]}\n```", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	var out struct {
		Title    string   `json:"title"`
		Elements []string `json:"elements"`
	}
	err := g.CompleteObject(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Circle Motion", out.Title)
	assert.Equal(t, []string{"circle", "text"}, out.Elements)
}

func TestGateway_CompleteObjectMalformed(t *testing.T) {
	mockClient := new(MockClient)
	mockClient.On("CompleteChat", mock.Anything, mock.Anything).
		Return("I cannot produce JSON for that request.", nil).Once()

	g, _ := newTestGateway(t, mockClient)

	var out map[string]interface{}
	err := g.CompleteObject(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, &out)
	require.Error(t, err)
	var malformed *MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RateLimitError{Provider: "acme"}))
	assert.True(t, IsRetryable(&UnavailableError{Provider: "acme", Status: 502}))
	assert.True(t, IsRetryable(fmt.Errorf("call failed: %w", &RateLimitError{Provider: "acme"})))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(&MalformedResponseError{Reason: "empty"}))
	assert.False(t, IsRetryable(nil))
}
