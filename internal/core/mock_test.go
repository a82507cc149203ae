package core

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockCall struct {
	Query  string
	Params map[string]any
}

// MockDriver answers by query text. Unknown queries return an empty result.
type MockDriver struct {
	mu      sync.Mutex
	Results map[string]neo4j.EagerResult
	Errors  map[string]error
	Calls   []MockCall
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		Results: make(map[string]neo4j.EagerResult),
		Errors:  make(map[string]error),
	}
}

func (m *MockDriver) On(query string, result neo4j.EagerResult) *MockDriver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[query] = result
	return m
}

func (m *MockDriver) Fail(query string, err error) *MockDriver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[query] = err
	return m
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Query: query, Params: params})
	if err := m.Errors[query]; err != nil {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

func (m *MockDriver) CallsTo(query string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.Calls {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

// rows builds an EagerResult from maps, one record per map.
func rows(maps ...map[string]any) neo4j.EagerResult {
	var res neo4j.EagerResult
	for _, m := range maps {
		rec := &neo4j.Record{}
		for k, v := range m {
			rec.Keys = append(rec.Keys, k)
			rec.Values = append(rec.Values, v)
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

type MockEmbedder struct {
	Vectors map[string][]float32
	Err     error
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vectors[text], nil
}

type MockLLM struct {
	Response string
	Err      error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
