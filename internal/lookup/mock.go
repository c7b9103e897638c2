package lookup

import "context"

// MockProvider is a scriptable Provider for tests.
type MockProvider struct {
	// Results maps terms to canned results. Terms absent from the map
	// yield Found=false.
	Results map[string]Result

	// Err, when set, is returned for every call.
	Err error

	// Calls records the terms looked up, in order.
	Calls []string
}

// Lookup returns the scripted result for term.
func (m *MockProvider) Lookup(_ context.Context, _ Kind, term string) (Result, error) {
	m.Calls = append(m.Calls, term)
	if m.Err != nil {
		return Result{}, m.Err
	}
	if res, ok := m.Results[term]; ok {
		return res, nil
	}
	return Result{Found: false, Source: "mock"}, nil
}
