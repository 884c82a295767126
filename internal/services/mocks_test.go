package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) {
	m.Called(ctx, routingKey, payload)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type fakeExtractor struct {
	text  string
	err   error
	paths []string
}

func (f *fakeExtractor) ExtractText(filePath string) (*PDFContent, error) {
	f.paths = append(f.paths, filePath)
	if f.err != nil {
		return nil, f.err
	}
	return &PDFContent{Text: f.text, PageCount: 1, FilePath: filePath, Strategy: "fake"}, nil
}

type fakeModelClient struct {
	response string
	err      error
	modelIDs []string
	prompts  []string
}

func (f *fakeModelClient) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	f.modelIDs = append(f.modelIDs, modelID)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeInvoker struct {
	response []byte
	err      error
	calls    int
	bodies   [][]byte
}

func (f *fakeInvoker) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	f.calls++
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeStrategy struct {
	name  string
	pages []string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) ExtractPages(filePath string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}
