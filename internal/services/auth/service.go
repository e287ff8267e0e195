package auth

import (
	"errors"
	"log"

	"astromart/internal/models"
	"astromart/internal/repositories"
	"astromart/internal/utils"
	"astromart/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

type RegisterAstrologerInput struct {
	Email         string
	Password      string
	Name          string
	Phone         string
	Specialities  string
	ChatRatePaise int64
	CallRatePaise int64
}

type Service interface {
	RegisterUser(input RegisterUserInput) (*models.User, error)
	RegisterAstrologer(input RegisterAstrologerInput) (*models.Astrologer, error)
	Login(email, phone, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(userID uint) error
	ChangePassword(userID uint, oldPassword, newPassword string) error
}

type service struct {
	userRepo     repositories.UserRepository
	providerRepo repositories.ProviderRepository
	walletRepo   repositories.WalletRepository
}

func NewService(userRepo repositories.UserRepository, providerRepo repositories.ProviderRepository, walletRepo repositories.WalletRepository) Service {
	return &service{
		userRepo:     userRepo,
		providerRepo: providerRepo,
		walletRepo:   walletRepo,
	}
}

func (s *service) RegisterUser(input RegisterUserInput) (*models.User, error) {
	if !validation.ValidPassword(input.Password) {
		return nil, errors.New("password must be at least 8 characters and contain special characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:    input.Email,
		Password: string(hashed),
		Name:     input.Name,
		Phone:    input.Phone,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	if err := s.walletRepo.Create(&models.Wallet{OwnerID: user.ID, OwnerType: models.OwnerTypeUser}); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterAstrologer creates a provider account. New astrologers start
// offline; they go online through the availability service.
func (s *service) RegisterAstrologer(input RegisterAstrologerInput) (*models.Astrologer, error) {
	if !validation.ValidPassword(input.Password) {
		return nil, errors.New("password must be at least 8 characters and contain special characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	astro := &models.Astrologer{
		Email:         input.Email,
		Password:      string(hashed),
		Name:          input.Name,
		Phone:         input.Phone,
		Specialities:  input.Specialities,
		ChatRatePaise: input.ChatRatePaise,
		CallRatePaise: input.CallRatePaise,
		IsOffline:     true,
	}
	if err := s.providerRepo.CreateAstrologer(astro); err != nil {
		return nil, err
	}
	if err := s.walletRepo.Create(&models.Wallet{OwnerID: astro.ID, OwnerType: models.OwnerTypeAstrologer}); err != nil {
		return nil, err
	}
	return astro, nil
}

func (s *service) Login(email, phone, password string) (*models.User, string, string, error) {
	user, err := s.getUserByIdentifier(email, phone)
	if err != nil {
		log.Printf("login failed: user not found for identifier %s", email+phone)
		return nil, "", "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: incorrect password for user id %d", user.ID)
		return nil, "", "", errors.New("invalid credentials")
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		log.Println("error generating tokens:", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
}

func (s *service) Logout(userID uint) error {
	return s.userRepo.IncrementTokenVersion(userID)
}

func (s *service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errors.New("failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}
	if !validation.ValidPassword(newPassword) {
		return errors.New("password must be at least 8 characters and contain special characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashed)
	user.TokenVersion++ // invalidate existing tokens

	if err := s.userRepo.Update(user); err != nil {
		return errors.New("failed to update password")
	}
	return nil
}

func (s *service) getUserByIdentifier(email, phone string) (*models.User, error) {
	if email != "" {
		return s.userRepo.GetByEmail(email)
	}
	return s.userRepo.GetByPhone(phone)
}
