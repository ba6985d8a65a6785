package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(r.db.WithContext(ctx), "email = ?", email)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return findUser(r.db.WithContext(ctx), "id = ?", id)
}

// FindProfile implements domain.UserRepository
func (r *UserRepositoryImpl) FindProfile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	db := r.db.WithContext(ctx)

	user, err := findUser(db, "id = ?", userID)
	if err != nil {
		return nil, err
	}

	kind, err := roleKindOf(db, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{User: *user}
	switch kind {
	case domain.RoleCandidate:
		c, err := r.candidateProfile(db, userID)
		if err != nil {
			return nil, err
		}
		profile.Role = domain.NewCandidateRole(*c)
	case domain.RoleRecruiter:
		rp, err := r.recruiterProfile(db, userID)
		if err != nil {
			return nil, err
		}
		profile.Role = domain.NewRecruiterRole(*rp)
	}
	return profile, nil
}

func (r *UserRepositoryImpl) candidateProfile(db *gorm.DB, userID uint) (*domain.CandidateProfile, error) {
	var row DBCandidate
	if err := db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: candidate profile missing", domain.ErrRoleNotFound)
		}
		return nil, err
	}

	var scores []struct {
		Name  string
		Score int
	}
	err := db.Table("user_sfia_scores").
		Select("sfia_categories.name AS name, user_sfia_scores.score AS score").
		Joins("JOIN sfia_categories ON sfia_categories.id = user_sfia_scores.sfia_category_id").
		Where("user_sfia_scores.user_id = ?", userID).
		Scan(&scores).Error
	if err != nil {
		return nil, err
	}

	out := &domain.CandidateProfile{
		Portfolio:  row.Portfolio,
		AboutMe:    row.AboutMe,
		Domicile:   row.Domicile,
		SfiaScores: make(map[string]int, len(scores)),
	}
	for _, s := range scores {
		out.SfiaScores[s.Name] = s.Score
	}
	return out, nil
}

func (r *UserRepositoryImpl) recruiterProfile(db *gorm.DB, userID uint) (*domain.RecruiterProfile, error) {
	var row struct {
		Position string
		Company  string
	}
	res := db.Table("recruiters").
		Select("positions.name AS position, companies.name AS company").
		Joins("JOIN positions ON positions.id = recruiters.position_id").
		Joins("JOIN companies ON companies.id = recruiters.company_id").
		Where("recruiters.user_id = ?", userID).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: recruiter profile missing", domain.ErrRoleNotFound)
	}
	return &domain.RecruiterProfile{Position: row.Position, Company: row.Company}, nil
}

// Transaction implements domain.UserRepository
func (r *UserRepositoryImpl) Transaction(ctx context.Context, fn func(store domain.RegistrationStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&registrationStore{tx: tx})
	})
}

// registrationStore implements domain.RegistrationStore on one transaction
type registrationStore struct {
	tx *gorm.DB
}

func (s *registrationStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(s.tx.WithContext(ctx), "email = ?", email)
}

func (s *registrationStore) FindRoleByName(ctx context.Context, name string) (*domain.RoleRecord, error) {
	var row DBRole
	if err := s.tx.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}
	kind, err := domain.ParseRoleKind(row.Name)
	if err != nil {
		return nil, err
	}
	return &domain.RoleRecord{ID: row.ID, Kind: kind}, nil
}

func (s *registrationStore) CreateUser(ctx context.Context, user *domain.User) error {
	row := domainToDB(user)
	if err := s.tx.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = row.ID
	user.CreatedAt, user.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (s *registrationStore) AssignRole(ctx context.Context, userID, roleID uint) error {
	return s.tx.WithContext(ctx).Create(&DBUserRole{UserID: userID, RoleID: roleID}).Error
}

func (s *registrationStore) FindSfiaCategoryByName(ctx context.Context, name string) (*domain.SfiaCategory, error) {
	var row DBSfiaCategory
	if err := s.tx.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSfiaCategoryNotFound
		}
		return nil, err
	}
	return &domain.SfiaCategory{ID: row.ID, Name: row.Name}, nil
}

func (s *registrationStore) SaveSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error {
	if len(scores) == 0 {
		return nil
	}
	rows := make([]DBUserSfiaScore, 0, len(scores))
	for categoryID, score := range scores {
		rows = append(rows, DBUserSfiaScore{UserID: userID, SfiaCategoryID: categoryID, Score: score})
	}
	return s.tx.WithContext(ctx).Create(&rows).Error
}

func (s *registrationStore) CreateCandidate(ctx context.Context, userID uint) error {
	return s.tx.WithContext(ctx).Create(&DBCandidate{UserID: userID}).Error
}

func (s *registrationStore) FindOrCreatePosition(ctx context.Context, name string) (uint, error) {
	row := DBPosition{}
	if err := s.tx.WithContext(ctx).Where(DBPosition{Name: name}).FirstOrCreate(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *registrationStore) FindOrCreateCompany(ctx context.Context, name string) (uint, error) {
	row := DBCompany{}
	if err := s.tx.WithContext(ctx).Where(DBCompany{Name: name}).FirstOrCreate(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *registrationStore) CreateRecruiter(ctx context.Context, userID, positionID, companyID uint) error {
	return s.tx.WithContext(ctx).Create(&DBRecruiter{UserID: userID, PositionID: positionID, CompanyID: companyID}).Error
}

// UpdateTransaction implements domain.UserRepository
func (r *UserRepositoryImpl) UpdateTransaction(ctx context.Context, fn func(store domain.UserUpdateStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userUpdateStore{registrationStore{tx: tx}})
	})
}

// userUpdateStore implements domain.UserUpdateStore on one transaction. The
// lookups it shares with registration come from the embedded store.
type userUpdateStore struct {
	registrationStore
}

func (s *userUpdateStore) FindUserByID(ctx context.Context, id uint) (*domain.User, error) {
	return findUser(s.tx.WithContext(ctx), "id = ?", id)
}

func (s *userUpdateStore) FindRoleKind(ctx context.Context, userID uint) (domain.RoleKind, error) {
	return roleKindOf(s.tx.WithContext(ctx), userID)
}

func (s *userUpdateStore) UpdateUser(ctx context.Context, user *domain.User) error {
	res := s.tx.WithContext(ctx).Model(&DBUser{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"password":      user.PasswordHash,
		"date_of_birth": user.DateOfBirth,
		"phone_number":  user.PhoneNumber,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *userUpdateStore) UpdateCandidate(ctx context.Context, userID uint, patch domain.CandidatePatch) error {
	cols := map[string]interface{}{}
	if patch.Portfolio != nil {
		cols["portofolio"] = *patch.Portfolio
	}
	if patch.AboutMe != nil {
		cols["about_me"] = *patch.AboutMe
	}
	if patch.Domicile != nil {
		cols["domicile"] = *patch.Domicile
	}
	if len(cols) == 0 {
		return nil
	}
	return s.tx.WithContext(ctx).Model(&DBCandidate{}).Where("user_id = ?", userID).Updates(cols).Error
}

func (s *userUpdateStore) UpdateRecruiter(ctx context.Context, userID, positionID, companyID uint) error {
	return s.tx.WithContext(ctx).Model(&DBRecruiter{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"position_id": positionID,
		"company_id":  companyID,
	}).Error
}

func (s *userUpdateStore) UpsertSfiaScores(ctx context.Context, userID uint, scores map[uint]int) error {
	if len(scores) == 0 {
		return nil
	}
	rows := make([]DBUserSfiaScore, 0, len(scores))
	for categoryID, score := range scores {
		rows = append(rows, DBUserSfiaScore{UserID: userID, SfiaCategoryID: categoryID, Score: score})
	}
	return s.tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "sfia_category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&rows).Error
}

func roleKindOf(db *gorm.DB, userID uint) (domain.RoleKind, error) {
	var role DBRole
	err := db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrRoleNotFound
	} else if err != nil {
		return "", err
	}
	return domain.ParseRoleKind(role.Name)
}

func findUser(db *gorm.DB, query string, arg interface{}) (*domain.User, error) {
	var row DBUser
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToDomain(&row), nil
}

// domainToDB converts domain user to database user
func domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		DateOfBirth:  user.DateOfBirth,
		PhoneNumber:  user.PhoneNumber,
	}
}

// dbToDomain converts database user to domain user
func dbToDomain(row *DBUser) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		DateOfBirth:  row.DateOfBirth,
		PhoneNumber:  row.PhoneNumber,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
