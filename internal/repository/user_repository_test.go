package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/utils"
)

type UserTestSuite struct {
	RepositorySuite
	users  *repository.UserRepo
	tokens *repository.TokenRepo
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func (suite *UserTestSuite) SetupTest() {
	suite.RepositorySuite.SetupTest()
	suite.users = repository.NewUserRepo(suite.DB)
	suite.tokens = repository.NewTokenRepo(suite.DB)
}

func (suite *UserTestSuite) TestCreate_NormalizesEmailAndHashesPassword() {
	suite.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?,?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "ken@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := suite.users.Create(context.Background(), "  Ken@Example.com ", "hunter22", bcrypt.MinCost)
	suite.Require().NoError(err)
	suite.Equal("ken@example.com", u.Email)
	suite.True(utils.VerifyPassword(u.PasswordHash, "hunter22"))
}

func (suite *UserTestSuite) TestCreate_DuplicateEmail() {
	suite.mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ken@example.com' for key 'uq_users_email'"})

	_, err := suite.users.Create(context.Background(), "ken@example.com", "hunter22", bcrypt.MinCost)
	suite.Require().ErrorIs(err, repository.ErrEmailExists)
}

func (suite *UserTestSuite) TestGetByEmail_NoRows() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at", "updated_at"}))

	_, err := suite.users.GetByEmail(context.Background(), "Nobody@example.com")
	suite.Require().ErrorIs(err, sql.ErrNoRows)
}

var tokenCols = []string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}

func (suite *UserTestSuite) TestValidateRefresh_RevokedTokenIsRejected() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(tokenCols).
			AddRow(1, "u-1", "abc", time.Now().Add(time.Hour), time.Now(), time.Now()))

	_, err := suite.tokens.ValidateRefresh(context.Background(), "abc")
	suite.Require().ErrorIs(err, sql.ErrNoRows)
}

func (suite *UserTestSuite) TestValidateRefresh_ActiveToken() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash=?")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows(tokenCols).
			AddRow(7, "u-1", "abc", time.Now().UTC().Add(time.Hour), nil, time.Now()))

	tok, err := suite.tokens.ValidateRefresh(context.Background(), "abc")
	suite.Require().NoError(err)
	suite.Equal(uint64(7), tok.ID)
	suite.Equal("u-1", tok.UserID)
	suite.Nil(tok.RevokedAt)
}

func (suite *UserTestSuite) TestRevokeByHash_ReportsWhetherItRevoked() {
	q := regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL")
	suite.mock.ExpectExec(q).WithArgs("abc").WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(q).WithArgs("abc").WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := suite.tokens.RevokeByHash(context.Background(), "abc")
	suite.Require().NoError(err)
	suite.True(first)

	second, err := suite.tokens.RevokeByHash(context.Background(), "abc")
	suite.Require().NoError(err)
	suite.False(second)
}
