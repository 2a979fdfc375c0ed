package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/trek-api/internal/application/dto"
	"github.com/jhoicas/trek-api/internal/application/session"
	"github.com/jhoicas/trek-api/internal/application/usecase"
	"github.com/jhoicas/trek-api/internal/domain"
	"github.com/jhoicas/trek-api/internal/domain/repository"
	"github.com/jhoicas/trek-api/pkg/brdoc"
	"github.com/jhoicas/trek-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login con CPF + fecha de nacimiento, sesión y logout.
type AuthUseCase struct {
	userRepo repository.UserRepository
	sessions session.Store
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, sessions session.Store, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, sessions: sessions, jwtCfg: jwtCfg, now: time.Now}
}

// Login busca al usuario por CPF y fecha de nacimiento, crea la sesión y emite el JWT
// (jti = id de sesión). Usuarios inactivos reciben domain.ErrUserInactive.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	cpf, ok := brdoc.CPF(in.CPF)
	if !ok {
		return nil, fmt.Errorf("%w: CPF debe tener %d dígitos", domain.ErrInvalidInput, brdoc.CPFLength)
	}
	birth, ok := brdoc.ParseDate(in.BirthDate)
	if !ok {
		return nil, fmt.Errorf("%w: fecha de nacimiento", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.FindByCPFAndBirthDate(ctx, cpf, birth)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	now := uc.now()
	sess := &session.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
	}
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, sess.ID, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      *usecase.ToUserResponse(user),
	}, nil
}

// Logout destruye la sesión; el token deja de ser aceptado aunque no haya expirado.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Session devuelve la sesión vigente o domain.ErrUnauthorized si ya no existe.
func (uc *AuthUseCase) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// Me devuelve el usuario de la sesión y el aceite pendiente, si hay.
func (uc *AuthUseCase) Me(ctx context.Context, sessionID string) (*dto.MeResponse, error) {
	sess, err := uc.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := &dto.MeResponse{User: *usecase.ToUserResponse(user)}
	if acc := sess.Acceptance; acc != nil && !acc.Consumed() {
		resp.Acceptance = &dto.AcceptanceResponse{ID: acc.ID, ProductID: acc.ProductID, AcceptedAt: acc.AcceptedAt}
	}
	return resp, nil
}
