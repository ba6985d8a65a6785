package mocks

import (
	"context"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc    func(ctx context.Context, id uint) (*domain.User, error)
	FindProfileFunc func(ctx context.Context, userID uint) (*domain.UserProfile, error)
	TransactionFunc func(ctx context.Context, fn func(store domain.RegistrationStore) error) error

	UpdateTransactionFunc func(ctx context.Context, fn func(store domain.UserUpdateStore) error) error

	// Store is handed to Transaction callbacks when TransactionFunc is nil.
	Store *MockRegistrationStore
	// UpdateStore is handed to UpdateTransaction callbacks when UpdateTransactionFunc is nil.
	UpdateStore *MockUserUpdateStore
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Store: NewMockRegistrationStore(), UpdateStore: NewMockUserUpdateStore()}
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindProfile loads a user with its role profile
func (m *MockUserRepository) FindProfile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	if m.FindProfileFunc != nil {
		return m.FindProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

// Transaction runs fn against Store
func (m *MockUserRepository) Transaction(ctx context.Context, fn func(store domain.RegistrationStore) error) error {
	if m.TransactionFunc != nil {
		return m.TransactionFunc(ctx, fn)
	}
	return fn(m.Store)
}

// UpdateTransaction runs fn against UpdateStore
func (m *MockUserRepository) UpdateTransaction(ctx context.Context, fn func(store domain.UserUpdateStore) error) error {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, fn)
	}
	return fn(m.UpdateStore)
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)

// MockRegistrationStore implements domain.RegistrationStore for testing.
// Defaults behave like an empty database seeded with both roles.
type MockRegistrationStore struct {
	FindUserByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindRoleByNameFunc         func(ctx context.Context, name string) (*domain.RoleRecord, error)
	CreateUserFunc             func(ctx context.Context, user *domain.User) error
	AssignRoleFunc             func(ctx context.Context, userID, roleID uint) error
	FindSfiaCategoryByNameFunc func(ctx context.Context, name string) (*domain.SfiaCategory, error)
	SaveSfiaScoresFunc         func(ctx context.Context, userID uint, scores map[uint]int) error
	CreateCandidateFunc        func(ctx context.Context, userID uint) error
	FindOrCreatePositionFunc   func(ctx context.Context, name string) (uint, error)
	FindOrCreateCompanyFunc    func(ctx context.Context, name string) (uint, error)
	CreateRecruiterFunc        func(ctx context.Context, userID, positionID, companyID uint) error

	// Recorded calls
	CreatedUsers []*domain.User
	SavedScores  map[uint]int
	Candidates   []uint
	Recruiters   [][3]uint
	nextUserID   uint
}

// NewMockRegistrationStore creates a new MockRegistrationStore with default behaviors
func NewMockRegistrationStore() *MockRegistrationStore {
	return &MockRegistrationStore{nextUserID: 1}
}

func (m *MockRegistrationStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFunc != nil {
		return m.FindUserByEmailFunc(ctx, email)
	}
	for _, u := range m.CreatedUsers {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockRegistrationStore) FindRoleByName(ctx context.Context, name string) (*domain.RoleRecord, error) {
	if m.FindRoleByNameFunc != nil {
		return m.FindRoleByNameFunc(ctx, name)
	}
	switch domain.RoleKind(name) {
	case domain.RoleCandidate:
		return &domain.RoleRecord{ID: 1, Kind: domain.RoleCandidate}, nil
	case domain.RoleRecruiter:
		return &domain.RoleRecord{ID: 2, Kind: domain.RoleRecruiter}, nil
	}
	return nil, domain.ErrRoleNotFound
}

func (m *MockRegistrationStore) CreateUser(ctx context.Context, user *domain.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	user.ID = m.nextUserID
	m.nextUserID++
	m.CreatedUsers = append(m.CreatedUsers, user)
	return nil
}

func (m *MockRegistrationStore) AssignRole(ctx context.Context, userID, roleID uint) error {
	if m.AssignRoleFunc != nil {
		return m.AssignRoleFunc(ctx, userID, roleID)
	}
	return nil
}

func (m *MockRegistrationStore) FindSfiaCategoryByName(ctx context.Context, name string) (*domain.SfiaCategory, error) {
	if m.FindSfiaCategoryByNameFunc != nil {
		return m.FindSfiaCategoryByNameFunc(ctx, name)
	}
	for i, known := range []string{"AIFL", "DTAN", "WEBD"} {
		if known == name {
			return &domain.SfiaCategory{ID: uint(i + 1), Name: name}, nil
		}
	}
	return nil, domain.ErrSfiaCategoryNotFound
}

func (m *MockRegistrationStore) SaveSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error {
	if m.SaveSfiaScoresFunc != nil {
		return m.SaveSfiaScoresFunc(ctx, userID, scores)
	}
	m.SavedScores = scores
	return nil
}

func (m *MockRegistrationStore) CreateCandidate(ctx context.Context, userID uint) error {
	if m.CreateCandidateFunc != nil {
		return m.CreateCandidateFunc(ctx, userID)
	}
	m.Candidates = append(m.Candidates, userID)
	return nil
}

func (m *MockRegistrationStore) FindOrCreatePosition(ctx context.Context, name string) (uint, error) {
	if m.FindOrCreatePositionFunc != nil {
		return m.FindOrCreatePositionFunc(ctx, name)
	}
	return 1, nil
}

func (m *MockRegistrationStore) FindOrCreateCompany(ctx context.Context, name string) (uint, error) {
	if m.FindOrCreateCompanyFunc != nil {
		return m.FindOrCreateCompanyFunc(ctx, name)
	}
	return 1, nil
}

func (m *MockRegistrationStore) CreateRecruiter(ctx context.Context, userID, positionID, companyID uint) error {
	if m.CreateRecruiterFunc != nil {
		return m.CreateRecruiterFunc(ctx, userID, positionID, companyID)
	}
	m.Recruiters = append(m.Recruiters, [3]uint{userID, positionID, companyID})
	return nil
}

var _ domain.RegistrationStore = (*MockRegistrationStore)(nil)

// MockUserUpdateStore implements domain.UserUpdateStore for testing.
// Users holds the rows lookups read and UpdateUser writes.
type MockUserUpdateStore struct {
	FindUserByIDFunc           func(ctx context.Context, id uint) (*domain.User, error)
	FindUserByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindRoleKindFunc           func(ctx context.Context, userID uint) (domain.RoleKind, error)
	UpdateUserFunc             func(ctx context.Context, user *domain.User) error
	UpdateCandidateFunc        func(ctx context.Context, userID uint, patch domain.CandidatePatch) error
	FindOrCreatePositionFunc   func(ctx context.Context, name string) (uint, error)
	FindOrCreateCompanyFunc    func(ctx context.Context, name string) (uint, error)
	UpdateRecruiterFunc        func(ctx context.Context, userID, positionID, companyID uint) error
	FindSfiaCategoryByNameFunc func(ctx context.Context, name string) (*domain.SfiaCategory, error)
	UpsertSfiaScoresFunc       func(ctx context.Context, userID uint, scores map[uint]int) error

	Users map[uint]*domain.User
	Kinds map[uint]domain.RoleKind

	// Recorded calls
	CandidatePatches []domain.CandidatePatch
	Recruiters       [][3]uint
	UpsertedScores   map[uint]int
}

// NewMockUserUpdateStore creates a new MockUserUpdateStore with no users
func NewMockUserUpdateStore() *MockUserUpdateStore {
	return &MockUserUpdateStore{
		Users: make(map[uint]*domain.User),
		Kinds: make(map[uint]domain.RoleKind),
	}
}

// Put seeds a user with its role
func (m *MockUserUpdateStore) Put(user *domain.User, kind domain.RoleKind) {
	m.Users[user.ID] = user
	m.Kinds[user.ID] = kind
}

func (m *MockUserUpdateStore) FindUserByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindUserByIDFunc != nil {
		return m.FindUserByIDFunc(ctx, id)
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserUpdateStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFunc != nil {
		return m.FindUserByEmailFunc(ctx, email)
	}
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserUpdateStore) FindRoleKind(ctx context.Context, userID uint) (domain.RoleKind, error) {
	if m.FindRoleKindFunc != nil {
		return m.FindRoleKindFunc(ctx, userID)
	}
	kind, ok := m.Kinds[userID]
	if !ok {
		return "", domain.ErrRoleNotFound
	}
	return kind, nil
}

func (m *MockUserUpdateStore) UpdateUser(ctx context.Context, user *domain.User) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, user)
	}
	if _, ok := m.Users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserUpdateStore) UpdateCandidate(ctx context.Context, userID uint, patch domain.CandidatePatch) error {
	if m.UpdateCandidateFunc != nil {
		return m.UpdateCandidateFunc(ctx, userID, patch)
	}
	m.CandidatePatches = append(m.CandidatePatches, patch)
	return nil
}

func (m *MockUserUpdateStore) FindOrCreatePosition(ctx context.Context, name string) (uint, error) {
	if m.FindOrCreatePositionFunc != nil {
		return m.FindOrCreatePositionFunc(ctx, name)
	}
	return 1, nil
}

func (m *MockUserUpdateStore) FindOrCreateCompany(ctx context.Context, name string) (uint, error) {
	if m.FindOrCreateCompanyFunc != nil {
		return m.FindOrCreateCompanyFunc(ctx, name)
	}
	return 1, nil
}

func (m *MockUserUpdateStore) UpdateRecruiter(ctx context.Context, userID, positionID, companyID uint) error {
	if m.UpdateRecruiterFunc != nil {
		return m.UpdateRecruiterFunc(ctx, userID, positionID, companyID)
	}
	m.Recruiters = append(m.Recruiters, [3]uint{userID, positionID, companyID})
	return nil
}

func (m *MockUserUpdateStore) FindSfiaCategoryByName(ctx context.Context, name string) (*domain.SfiaCategory, error) {
	if m.FindSfiaCategoryByNameFunc != nil {
		return m.FindSfiaCategoryByNameFunc(ctx, name)
	}
	for i, known := range []string{"AIFL", "DTAN", "WEBD"} {
		if known == name {
			return &domain.SfiaCategory{ID: uint(i + 1), Name: name}, nil
		}
	}
	return nil, domain.ErrSfiaCategoryNotFound
}

func (m *MockUserUpdateStore) UpsertSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error {
	if m.UpsertSfiaScoresFunc != nil {
		return m.UpsertSfiaScoresFunc(ctx, userID, scores)
	}
	m.UpsertedScores = scores
	return nil
}

var _ domain.UserUpdateStore = (*MockUserUpdateStore)(nil)
