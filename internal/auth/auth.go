// Package auth 管理员身份校验与会话令牌
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/wfunc/serious-game/internal/config"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/utils"
	"go.uber.org/zap"
)

// Credentials 登录凭证
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Authenticator 凭证校验能力
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) bool
}

// ConfigAuthenticator 与配置中的管理员账号比对
// 配置了 password_hash 时按 argon2id 校验，否则恒定时间比较明文
type ConfigAuthenticator struct {
	username     string
	password     string
	passwordHash string
	log          *zap.Logger
}

// NewConfigAuthenticator 创建配置认证器
func NewConfigAuthenticator(cfg config.AdminConfig, log *zap.Logger) *ConfigAuthenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigAuthenticator{
		username:     cfg.Username,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		log:          log,
	}
}

// Authenticate 校验凭证
func (a *ConfigAuthenticator) Authenticate(ctx context.Context, creds Credentials) bool {
	if a.username == "" || (a.password == "" && a.passwordHash == "") {
		a.log.Warn("未配置管理员凭证，拒绝登录")
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(a.username)) == 1

	var passOK bool
	if a.passwordHash != "" {
		ok, err := utils.VerifyPassword(creds.Password, a.passwordHash)
		if err != nil {
			a.log.Error("管理员密码哈希格式错误", zap.Error(err))
			return false
		}
		passOK = ok
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(creds.Password), []byte(a.password)) == 1
	}

	return userOK && passOK
}

// Session 登录成功后签发的会话
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// Service 管理员登录与令牌校验
type Service struct {
	authenticator Authenticator
	jwt           *utils.JWTManager
	log           *zap.Logger
}

// NewService 创建认证服务
func NewService(authenticator Authenticator, jwt *utils.JWTManager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		authenticator: authenticator,
		jwt:           jwt,
		log:           log,
	}
}

// Login 校验凭证并签发令牌
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if !s.authenticator.Authenticate(ctx, creds) {
		s.log.Warn("管理员登录失败", zap.String("username", creds.Username))
		return nil, apperrors.New(apperrors.ErrAuthentication, "用户名或密码错误")
	}

	sessionID, err := utils.GenerateSessionID()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "生成会话ID失败")
	}

	token, expiresAt, err := s.jwt.GenerateAdminToken(creds.Username, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "签发令牌失败")
	}

	s.log.Info("管理员登录成功", zap.String("username", creds.Username))
	return &Session{Token: token, ExpiresAt: expiresAt, Username: creds.Username}, nil
}

// ValidateToken 校验令牌
func (s *Service) ValidateToken(ctx context.Context, token string) (*utils.AdminClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	switch {
	case err == utils.ErrExpiredToken:
		return nil, apperrors.New(apperrors.ErrTokenExpired)
	case err != nil:
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}
	return claims, nil
}
