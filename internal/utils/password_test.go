package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// PasswordTestSuite 密码工具测试套件
type PasswordTestSuite struct {
	suite.Suite
}

// 测试密码哈希
func (suite *PasswordTestSuite) TestHashPassword() {
	hash, err := HashPassword("atelier-2025")
	suite.NoError(err)
	suite.True(strings.HasPrefix(hash, "$argon2id$"))
	suite.True(IsPasswordHash(hash))
	suite.False(IsPasswordHash("atelier-2025"))

	other, err := HashPassword("atelier-2025")
	suite.NoError(err)
	suite.NotEqual(hash, other)
}

// 测试密码验证
func (suite *PasswordTestSuite) TestVerifyPassword() {
	hash, err := HashPassword("atelier-2025")
	suite.Require().NoError(err)

	ok, err := VerifyPassword("atelier-2025", hash)
	suite.NoError(err)
	suite.True(ok)

	ok, err = VerifyPassword("wrong", hash)
	suite.NoError(err)
	suite.False(ok)
}

// 测试无效哈希格式
func (suite *PasswordTestSuite) TestVerifyInvalidHash() {
	for _, encoded := range []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		ok, err := VerifyPassword("x", encoded)
		suite.Error(err, encoded)
		suite.False(ok)
	}
}

// 测试会话ID
func (suite *PasswordTestSuite) TestGenerateSessionID() {
	a, err := GenerateSessionID()
	suite.NoError(err)
	b, err := GenerateSessionID()
	suite.NoError(err)
	suite.Len(a, 32)
	suite.NotEqual(a, b)
}

func TestPasswordSuite(t *testing.T) {
	suite.Run(t, new(PasswordTestSuite))
}
