package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	GenerateFunc func(ctx context.Context, req Request) (string, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Generate(ctx context.Context, req Request) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "mock response", nil
}
