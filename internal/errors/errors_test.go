package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrValidation)
	suite.NotNil(err)
	suite.Equal(ErrValidation, err.Code)
	suite.Equal("参数校验失败", err.Message)
	suite.Empty(err.Details)

	err = New(ErrNotFound, "游戏不存在")
	suite.Equal("资源未找到", err.Message)
	suite.Equal("游戏不存在", err.Details)

	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost")
	suite.Equal("连接失败; 主机: localhost", err.Details)
}

func (suite *ErrorsTestSuite) TestConstructors() {
	suite.True(Is(Validation("rating %d out of range", 7), ErrValidation))
	suite.True(Is(NotFound("game %s", "abc"), ErrNotFound))
	suite.True(Is(NoScores("game %s", "abc"), ErrNoScores))

	cause := errors.New("disk full")
	err := Storage(cause, "write poster")
	suite.True(Is(err, ErrStorage))
	suite.Equal(cause, err.Cause)
	suite.True(IsStorage(err))
	suite.True(IsStorage(New(ErrDatabaseInsert)))
	suite.False(IsStorage(New(ErrValidation)))
}

func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	suite.Nil(Wrap(nil, ErrUnknown))

	// 已有的AppError保留原始错误码
	appErr := New(ErrNotFound, "资源不存在")
	wrappedAppErr := Wrap(appErr, ErrStorage, "额外信息")
	suite.Equal(ErrNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("连接超时")
	wrappedErr := Wrapf(originalErr, ErrDatabaseConnect, "数据库 %s 连接失败", "sqlite")
	suite.Equal("数据库 sqlite 连接失败", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
}

func (suite *ErrorsTestSuite) TestIsThroughWrapping() {
	err := fmt.Errorf("handler: %w", NotFound("game x"))
	suite.True(Is(err, ErrNotFound))
	suite.Equal(ErrNotFound, GetCode(err))

	// 标准库 errors.Is 按错误码比较
	suite.True(errors.Is(err, New(ErrNotFound)))
	suite.False(errors.Is(err, New(ErrValidation)))

	suite.False(Is(nil, ErrNotFound))
	suite.False(Is(errors.New("plain"), ErrUnknown))
}

func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrTokenExpired, GetCode(New(ErrTokenExpired)))
	suite.Equal(ErrUnknown, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

func (suite *ErrorsTestSuite) TestError() {
	err := &AppError{Code: ErrNotFound, Message: "资源未找到"}
	suite.Equal("[1002] 资源未找到", err.Error())

	err.Details = "game: 123"
	suite.Equal("[1002] 资源未找到: game: 123", err.Error())
}

func (suite *ErrorsTestSuite) TestWithCause() {
	cause := errors.New("SQL语法错误")
	err := New(ErrDatabaseQuery).WithCause(cause)
	suite.Equal(cause, err.Unwrap())
	suite.Equal("SQL语法错误", err.Details)

	err2 := New(ErrDatabaseQuery, "查询失败").WithCause(cause)
	suite.Equal("查询失败", err2.Details)
}

func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrValidation, 400},
		{ErrNotFound, 404},
		{ErrAmbiguous, 409},
		{ErrNoScores, 422},
		{ErrPermissionDenied, 403},
		{ErrAuthentication, 401},
		{ErrTokenInvalid, 401},
		{ErrRateLimitExceeded, 429},
		{ErrStorage, 503},
		{ErrDatabaseConnect, 503},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		suite.Equal(tc.expected, New(tc.code).HTTPStatus(), "错误码 %d", tc.code)
	}
}

func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrNotFound, "游戏不存在")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal("未知错误", err.Message)
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
