package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/prodboard/internal/catalog"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "PRODBOARD_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the postgres snapshot store.
type PgStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool
	store       *Pg                         //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "prodboard_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../deploy/migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *PgStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the snapshot table.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE catalog_snapshots")
	require.NoError(s.T(), err, "Failed to truncate catalog_snapshots table")
}

// TestPgStoreIntegration runs the postgres snapshot store integration tests.
func TestPgStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) TestLoad_NoSnapshot() {
	s.SetupTest()
	// given (nothing saved)

	// when
	products, err := s.store.Load(s.ctx)

	// then an absent row is an empty catalog
	require.NoError(s.T(), err, "Load should not return an error")
	assert.Equal(s.T(), []catalog.Product{}, products)
}

func (s *PgStoreSuite) TestSaveLoad_RoundTrip() {
	s.SetupTest()
	// given
	products := []catalog.Product{
		{ID: "1", Name: "Laptop", Price: 999.99, Category: catalog.CategoryElectronics, Stock: 4, Description: "Workstation", Image: "https://example.com/laptop.png"},
		{ID: "2", Name: "T-Shirt", Price: 19.99, Category: catalog.CategoryClothing, Stock: 0},
	}

	// when
	err := s.store.Save(s.ctx, products)
	require.NoError(s.T(), err, "Save should not return an error")
	loaded, err := s.store.Load(s.ctx)

	// then
	require.NoError(s.T(), err, "Load should not return an error")
	assert.Equal(s.T(), products, loaded)
}

func (s *PgStoreSuite) TestSave_Upserts() {
	s.SetupTest()
	// given an existing snapshot
	first := []catalog.Product{{ID: "1", Name: "Laptop", Price: 999.99, Category: catalog.CategoryElectronics}}
	require.NoError(s.T(), s.store.Save(s.ctx, first))

	// when a second save replaces it
	second := []catalog.Product{{ID: "2", Name: "Novel", Price: 12.50, Category: catalog.CategoryBooks, Stock: 10}}
	require.NoError(s.T(), s.store.Save(s.ctx, second))
	loaded, err := s.store.Load(s.ctx)

	// then only one row exists and it carries the latest list
	require.NoError(s.T(), err)
	assert.Equal(s.T(), second, loaded)

	var rows int
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT count(*) FROM catalog_snapshots").Scan(&rows))
	assert.Equal(s.T(), 1, rows, "saves must upsert the single snapshot row")
}

func (s *PgStoreSuite) TestSave_EmptyList() {
	s.SetupTest()
	// given
	require.NoError(s.T(), s.store.Save(s.ctx, []catalog.Product{{ID: "1", Name: "Laptop"}}))

	// when the catalog is emptied
	require.NoError(s.T(), s.store.Save(s.ctx, []catalog.Product{}))
	loaded, err := s.store.Load(s.ctx)

	// then
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []catalog.Product{}, loaded)
}
