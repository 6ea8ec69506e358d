package repository_test

import (
	"database/sql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	DB   *sql.DB
	mock sqlmock.Sqlmock
}

func (suite *RepositorySuite) SetupTest() {
	var err error
	suite.DB, suite.mock, err = sqlmock.New()
	suite.Require().NoError(err)
}

func (suite *RepositorySuite) TearDownTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
	_ = suite.DB.Close()
}
