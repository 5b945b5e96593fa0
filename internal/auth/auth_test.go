package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/serious-game/internal/config"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/utils"
)

// AuthTestSuite 管理员认证测试套件
type AuthTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (suite *AuthTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

// 测试明文密码
func (suite *AuthTestSuite) TestPlainPassword() {
	a := NewConfigAuthenticator(config.AdminConfig{Username: "admin", Password: "secret"}, nil)

	suite.True(a.Authenticate(suite.ctx, Credentials{Username: "admin", Password: "secret"}))
	suite.False(a.Authenticate(suite.ctx, Credentials{Username: "admin", Password: "Secret"}))
	suite.False(a.Authenticate(suite.ctx, Credentials{Username: "root", Password: "secret"}))
	suite.False(a.Authenticate(suite.ctx, Credentials{}))
}

// 测试哈希密码优先
func (suite *AuthTestSuite) TestHashedPassword() {
	hash, err := utils.HashPassword("secret")
	suite.Require().NoError(err)

	a := NewConfigAuthenticator(config.AdminConfig{Username: "admin", Password: "ignored", PasswordHash: hash}, nil)
	suite.True(a.Authenticate(suite.ctx, Credentials{Username: "admin", Password: "secret"}))
	suite.False(a.Authenticate(suite.ctx, Credentials{Username: "admin", Password: "ignored"}))

	broken := NewConfigAuthenticator(config.AdminConfig{Username: "admin", PasswordHash: "$argon2id$bad"}, nil)
	suite.False(broken.Authenticate(suite.ctx, Credentials{Username: "admin", Password: "secret"}))
}

// 测试未配置凭证
func (suite *AuthTestSuite) TestNotConfigured() {
	a := NewConfigAuthenticator(config.AdminConfig{Username: "admin"}, nil)
	suite.False(a.Authenticate(suite.ctx, Credentials{Username: "admin", Password: ""}))
}

// 测试登录与令牌校验
func (suite *AuthTestSuite) TestLoginAndValidate() {
	svc := NewService(
		NewConfigAuthenticator(config.AdminConfig{Username: "admin", Password: "secret"}, nil),
		utils.NewJWTManager("k", time.Hour),
		nil,
	)

	session, err := svc.Login(suite.ctx, Credentials{Username: "admin", Password: "secret"})
	suite.Require().NoError(err)
	suite.NotEmpty(session.Token)
	suite.Equal("admin", session.Username)

	claims, err := svc.ValidateToken(suite.ctx, session.Token)
	suite.NoError(err)
	suite.True(claims.IsAdmin())

	_, err = svc.Login(suite.ctx, Credentials{Username: "admin", Password: "nope"})
	suite.True(apperrors.Is(err, apperrors.ErrAuthentication))

	_, err = svc.ValidateToken(suite.ctx, "garbage")
	suite.True(apperrors.Is(err, apperrors.ErrTokenInvalid))
}

// 测试过期令牌
func (suite *AuthTestSuite) TestExpiredToken() {
	authn := NewConfigAuthenticator(config.AdminConfig{Username: "admin", Password: "secret"}, nil)
	expired := NewService(authn, utils.NewJWTManager("k", -time.Minute), nil)
	session, err := expired.Login(suite.ctx, Credentials{Username: "admin", Password: "secret"})
	suite.Require().NoError(err)

	svc := NewService(authn, utils.NewJWTManager("k", time.Hour), nil)
	_, err = svc.ValidateToken(suite.ctx, session.Token)
	suite.True(apperrors.Is(err, apperrors.ErrTokenExpired))
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
