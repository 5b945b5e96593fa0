package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/serious-game/internal/config"
	apperrors "github.com/wfunc/serious-game/internal/errors"
)

// StorageTestSuite 文件存储测试套件
type StorageTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *BlobStore
}

func (suite *StorageTestSuite) SetupTest() {
	suite.ctx = context.Background()
	store, err := Open(suite.ctx, &config.StorageConfig{
		URL:       "mem://",
		GuideDir:  "guides",
		PosterDir: "images",
	}, nil)
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *StorageTestSuite) TearDownTest() {
	suite.store.Close()
}

// 测试写入与读取
func (suite *StorageTestSuite) TestStoreAndOpen() {
	ref, err := suite.store.Store(suite.ctx, strings.NewReader("%PDF-1.4"), "regles.pdf", CategoryGuide)
	suite.NoError(err)
	suite.True(strings.HasPrefix(ref, "guides/"))
	suite.True(strings.HasSuffix(ref, "_regles.pdf"))

	r, err := suite.store.Open(suite.ctx, ref)
	suite.Require().NoError(err)
	defer r.Close()
	data, err := io.ReadAll(r)
	suite.NoError(err)
	suite.Equal("%PDF-1.4", string(data))
	suite.Equal("application/pdf", r.ContentType())
}

// 测试同名文件不会覆盖
func (suite *StorageTestSuite) TestStoreUniqueKeys() {
	a, err := suite.store.Store(suite.ctx, bytes.NewReader([]byte{1}), "poster.png", CategoryPoster)
	suite.NoError(err)
	b, err := suite.store.Store(suite.ctx, bytes.NewReader([]byte{2}), "poster.png", CategoryPoster)
	suite.NoError(err)
	suite.NotEqual(a, b)
	suite.True(strings.HasPrefix(a, "images/"))
}

// 测试文件名中的路径被去除
func (suite *StorageTestSuite) TestStoreSanitizesName() {
	ref, err := suite.store.Store(suite.ctx, strings.NewReader("x"), "../../etc/passwd.pdf", CategoryGuide)
	suite.NoError(err)
	suite.NotContains(ref, "..")
	suite.True(strings.HasSuffix(ref, "_passwd.pdf"))

	ref, err = suite.store.Store(suite.ctx, strings.NewReader("x"), `C:\tmp\plan.pdf`, CategoryGuide)
	suite.NoError(err)
	suite.True(strings.HasSuffix(ref, "_plan.pdf"))
}

// 测试未知类别
func (suite *StorageTestSuite) TestStoreUnknownCategory() {
	_, err := suite.store.Store(suite.ctx, strings.NewReader("x"), "a.txt", Category("misc"))
	suite.True(apperrors.Is(err, apperrors.ErrValidation))
}

// 测试读取不存在的文件
func (suite *StorageTestSuite) TestOpenMissing() {
	_, err := suite.store.Open(suite.ctx, "guides/missing.pdf")
	suite.True(apperrors.Is(err, apperrors.ErrNotFound))

	_, err = suite.store.Open(suite.ctx, "")
	suite.True(apperrors.Is(err, apperrors.ErrNotFound))
}

// 测试删除
func (suite *StorageTestSuite) TestDelete() {
	ref, err := suite.store.Store(suite.ctx, strings.NewReader("x"), "a.jpg", CategoryPoster)
	suite.NoError(err)

	ok, err := suite.store.Exists(suite.ctx, ref)
	suite.NoError(err)
	suite.True(ok)

	suite.NoError(suite.store.Delete(suite.ctx, ref))
	ok, err = suite.store.Exists(suite.ctx, ref)
	suite.NoError(err)
	suite.False(ok)

	// 重复删除不报错
	suite.NoError(suite.store.Delete(suite.ctx, ref))
}

// 测试扩展名白名单
func (suite *StorageTestSuite) TestCheckExtension() {
	suite.NoError(CheckExtension(CategoryGuide, "rules.pdf"))
	suite.NoError(CheckExtension(CategoryGuide, "RULES.PDF"))
	suite.NoError(CheckExtension(CategoryPoster, "a.jpg"))
	suite.NoError(CheckExtension(CategoryPoster, "a.jpeg"))
	suite.NoError(CheckExtension(CategoryPoster, "a.png"))

	for _, tc := range []struct {
		category Category
		name     string
	}{
		{CategoryGuide, "rules.docx"},
		{CategoryGuide, "pdf"},
		{CategoryPoster, "a.gif"},
		{CategoryPoster, "a.pdf"},
		{Category("x"), "a.pdf"},
	} {
		err := CheckExtension(tc.category, tc.name)
		suite.True(apperrors.Is(err, apperrors.ErrValidation), tc.name)
	}
}

// 测试键清洗
func (suite *StorageTestSuite) TestSanitizeKey() {
	suite.Equal("guides/a.pdf", sanitizeKey("/guides/./a.pdf"))
	suite.Equal("etc/passwd", sanitizeKey("../../etc/passwd"))
	suite.Equal("", sanitizeKey("/"))
	suite.Equal("upload", sanitizeName(".."))
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}
