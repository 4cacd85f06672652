package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"beerorder/internal/adapters/out/postgres/orderrepo"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite provides integration tests for the order
// repository using a PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderLineDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_lines").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(3, 5)

	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.assertCount(&orderrepo.OrderDTO{}, 1)
	suite.assertCount(&orderrepo.OrderLineDTO{}, 2)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_Fails() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(1)

	suite.Require().NoError(suite.repository.Add(ctx, testOrder))
	suite.Require().Error(suite.repository.Add(ctx, testOrder))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_RoundTrip() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(3, 5, 7)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Equal(testOrder.ID(), loaded.ID())
	suite.Equal(testOrder.CustomerID(), loaded.CustomerID())
	suite.Equal(testOrder.CustomerRef(), loaded.CustomerRef())
	suite.Equal(order.New, loaded.Status())
	suite.Require().Len(loaded.Lines(), 3)
	for i, l := range testOrder.Lines() {
		suite.Equal(l.ID(), loaded.Lines()[i].ID(), "line order should be kept")
		suite.Equal(l.QuantityOrdered(), loaded.Lines()[i].QuantityOrdered())
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StatusAndAllocations() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(3)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	for _, e := range []order.Event{order.ValidateOrder, order.ValidationSuccess, order.AllocateOrder, order.AllocationNoInventory} {
		_, err := testOrder.Apply(e)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(testOrder.Allocate([]order.LineAllocation{
		{LineID: testOrder.Lines()[0].ID(), QuantityAllocated: 2},
	}))

	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	loaded, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.PendingInventory, loaded.Status())
	suite.Equal(2, loaded.Lines()[0].QuantityAllocated())

	status, err := suite.repository.GetStatus(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.PendingInventory, status)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NotFound() {
	err := suite.repository.Update(context.Background(), suite.createTestOrder(1))
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetStatus_NotFound() {
	_, err := suite.repository.GetStatus(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(quantities ...int) *order.Order {
	lines := make([]*order.Line, 0, len(quantities))
	for _, q := range quantities {
		line, err := order.NewLine(kernel.NewUUID(), "0631234200036", q)
		suite.Require().NoError(err)
		lines = append(lines, line)
	}
	testOrder, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "web-1", lines)
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) assertCount(model any, expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(model).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
