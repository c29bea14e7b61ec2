package auth

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	token string
	set   bool
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) SetToken(token string) error {
	m.token = token
	m.set = true
	return nil
}

func (m *MockStore) GetToken() (string, error) {
	if !m.set {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

func (m *MockStore) DeleteToken() error {
	if !m.set {
		return ErrTokenNotFound
	}
	m.token = ""
	m.set = false
	return nil
}
