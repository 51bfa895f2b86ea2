package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/user/model"
	"researchequals-backend/internal/domains/user/repository"
	"researchequals-backend/internal/infrastructure/search"
	"researchequals-backend/pkg/jwt"
	"researchequals-backend/pkg/logger"
)

const bcryptCost = 12

// UserService handles signup and login. New workspaces are pushed to
// the workspace search index; that write is best-effort and never
// fails the signup.
type UserService struct {
	repo         repository.UserRepository
	jwtManager   *jwt.Manager
	searchClient *search.Client
	indexName    string
}

func NewUserService(repo repository.UserRepository, jwtManager *jwt.Manager, searchClient *search.Client, indexPrefix string) *UserService {
	return &UserService{
		repo:         repo,
		jwtManager:   jwtManager,
		searchClient: searchClient,
		indexName:    indexPrefix + "_workspaces",
	}
}

// AuthResult is the outcome of signup or login.
type AuthResult struct {
	User      *model.User         `json:"user"`
	Workspace *modmodel.Workspace `json:"workspace"`
	Token     string              `json:"token"`
}

// Signup creates the account, its workspace and the OWNER membership,
// then indexes the workspace profile.
func (s *UserService) Signup(ctx context.Context, email, password, handle, firstName, lastName string) (*AuthResult, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		HashedPassword: string(hashed),
		Role:           model.RoleCustomer,
	}
	workspace := &modmodel.Workspace{
		Handle:    strings.ToLower(handle),
		FirstName: firstName,
		LastName:  lastName,
		Avatar:    generatedAvatarURL(handle),
	}

	if err := s.repo.CreateWithWorkspace(ctx, user, workspace); err != nil {
		return nil, err
	}

	s.indexWorkspace(ctx, workspace)

	token, err := s.jwtManager.GenerateToken(user.ID, workspace.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User signed up", map[string]interface{}{
		"user_id":      user.ID,
		"workspace_id": workspace.ID,
		"handle":       workspace.Handle,
	})
	return &AuthResult{User: user, Workspace: workspace, Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == model.ErrUserNotFound {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	workspace, err := s.repo.GetOwnedWorkspace(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(user.ID, workspace.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: user, Workspace: workspace, Token: token}, nil
}

func (s *UserService) indexWorkspace(ctx context.Context, w *modmodel.Workspace) {
	if s.searchClient == nil {
		return
	}
	err := s.searchClient.SaveObject(ctx, s.indexName, fmt.Sprintf("%d", w.ID), map[string]interface{}{
		"objectID": fmt.Sprintf("%d", w.ID),
		"name":     w.Name,
		"handle":   w.Handle,
		"avatar":   w.Avatar,
		"pronouns": w.Pronouns,
	})
	if err != nil {
		logger.Error("Failed to index new workspace", err)
	}
}

// generatedAvatarURL builds a placeholder avatar with a random
// background color, used until the user uploads their own.
func generatedAvatarURL(handle string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(0xFFFFFF))
	color := "cccccc"
	if err == nil {
		color = fmt.Sprintf("%06x", n.Int64())
	}
	return fmt.Sprintf("https://eu.ui-avatars.com/api/?rounded=true&background=%s&name=%s", color, handle)
}
