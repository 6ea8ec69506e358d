package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/repository"
)

type ReviewTestSuite struct {
	RepositorySuite
	repo *repository.ReviewRepo
}

func TestReviewTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewTestSuite))
}

func (suite *ReviewTestSuite) SetupTest() {
	suite.RepositorySuite.SetupTest()
	suite.repo = repository.NewReviewRepo(suite.DB)
}

func (suite *ReviewTestSuite) TestList_ForRestaurant() {
	rid := "5d0c1f5e-3b6f-4a43-9a57-1f0b1a9e2b11"
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, username, restaurant_id, created_at FROM reviews WHERE restaurant_id = ? ORDER BY created_at DESC, id LIMIT ?")).
		WithArgs(rid, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "username", "restaurant_id", "created_at"}).
			AddRow("0f8fad5b-d9cb-469f-a165-70867728950e", "Great", "Fresh fish", "ken@example.com", rid, time.Now()))

	items, err := suite.repo.List(context.Background(), repository.ReviewQuery{RestaurantID: rid, Limit: 10})
	suite.Require().NoError(err)
	suite.Len(items, 1)
	suite.Equal("ken@example.com", items[0].Username)
}

func (suite *ReviewTestSuite) TestList_AllWithoutFilter() {
	suite.mock.ExpectQuery("^" + regexp.QuoteMeta("SELECT id, title, content, username, restaurant_id, created_at FROM reviews ORDER BY created_at DESC, id") + "$").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "username", "restaurant_id", "created_at"}))

	items, err := suite.repo.List(context.Background(), repository.ReviewQuery{})
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *ReviewTestSuite) TestCreate_TwiceInsertsTwice() {
	insert := regexp.QuoteMeta("INSERT INTO reviews (id, title, content, username, restaurant_id, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	for i := 0; i < 2; i++ {
		suite.mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), "Great", "Fresh fish", "ken@example.com", "r-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	first := &model.Review{Title: "Great", Content: "Fresh fish", Username: "ken@example.com", RestaurantID: "r-1"}
	second := *first
	suite.Require().NoError(suite.repo.Create(context.Background(), first))
	suite.Require().NoError(suite.repo.Create(context.Background(), &second))
	suite.NotEqual(first.ID, second.ID)
}
