package notes

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"example.com/launchpad-notes/internal/db"
)

// newSQLiteRepository opens a private in-memory database on a single connection.
func newSQLiteRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, ":memory:", 1, 1, 0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.SQL.Close() })

	repo, err := NewRepository(ctx, conn.SQL, conn.Dialect)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

type RepositorySuite struct {
	suite.Suite

	url  string
	conn *db.DB
	repo *Repository
	ctx  context.Context
}

func TestRepositorySuite_SQLite(t *testing.T) {
	suite.Run(t, &RepositorySuite{url: ":memory:"})
}

func TestRepositorySuite_Postgres(t *testing.T) {
	url := os.Getenv("NOTES_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("NOTES_TEST_POSTGRES_URL not set")
	}
	suite.Run(t, &RepositorySuite{url: url})
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()

	conn, err := db.Open(s.ctx, s.url, 1, 1, 0, 0)
	s.Require().NoError(err)
	s.conn = conn

	if conn.Dialect == db.Postgres {
		_, err = conn.SQL.ExecContext(s.ctx, `DROP TABLE IF EXISTS notes`)
		s.Require().NoError(err)
	}

	s.repo, err = NewRepository(s.ctx, conn.SQL, conn.Dialect)
	s.Require().NoError(err)
}

func (s *RepositorySuite) TearDownTest() {
	_ = s.repo.Close()
	_ = s.conn.SQL.Close()
}

func (s *RepositorySuite) mustCreate(title, content string) Note {
	n, err := s.repo.Create(s.ctx, title, content)
	s.Require().NoError(err)
	return n
}

func (s *RepositorySuite) TestCreate_IDsStrictlyIncrease() {
	var last int64
	for i := 0; i < 10; i++ {
		n := s.mustCreate("t", "c")
		s.Require().Greater(n.ID, last)
		s.Require().False(n.CreatedAt.IsZero())
		last = n.ID
	}
}

func (s *RepositorySuite) TestCreate_GetRoundTrip() {
	cases := []struct{ title, content string }{
		{"Shopping", "milk, eggs"},
		{"", ""},
		{"", "only content"},
		{"заметка ✍", "line one\nline two\ttabbed"},
	}

	for _, c := range cases {
		created := s.mustCreate(c.title, c.content)

		got, err := s.repo.Get(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Require().Equal(c.title, got.Title)
		s.Require().Equal(c.content, got.Content)
		s.Require().Equal(created.ID, got.ID)
		s.Require().True(created.CreatedAt.Equal(got.CreatedAt))
	}
}

func (s *RepositorySuite) TestGet_Missing() {
	_, err := s.repo.Get(s.ctx, 12345)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestUpdate_ReplacesFieldsKeepsCreatedAt() {
	created := s.mustCreate("Shopping", "milk, eggs")

	updated, err := s.repo.Update(s.ctx, created.ID, "Shopping list", "")
	s.Require().NoError(err)
	s.Require().Equal(created.ID, updated.ID)
	s.Require().Equal("Shopping list", updated.Title)
	s.Require().Equal("", updated.Content)

	got, err := s.repo.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Equal("Shopping list", got.Title)
	s.Require().Equal("", got.Content)
	s.Require().True(created.CreatedAt.Equal(got.CreatedAt))
}

func (s *RepositorySuite) TestUpdate_Missing() {
	_, err := s.repo.Update(s.ctx, 99, "t", "c")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestDelete_ThenGetAndDeleteAgain() {
	n := s.mustCreate("t", "c")

	s.Require().NoError(s.repo.Delete(s.ctx, n.ID))

	_, err := s.repo.Get(s.ctx, n.ID)
	s.Require().ErrorIs(err, ErrNotFound)

	s.Require().ErrorIs(s.repo.Delete(s.ctx, n.ID), ErrNotFound)
}

func (s *RepositorySuite) TestIDs_NotReusedAfterDelete() {
	a := s.mustCreate("a", "")
	b := s.mustCreate("b", "")
	s.Require().NoError(s.repo.Delete(s.ctx, b.ID))

	c := s.mustCreate("c", "")
	s.Require().Greater(c.ID, b.ID)
	s.Require().Greater(c.ID, a.ID)
}

func (s *RepositorySuite) TestList_EmptyIsNotAnError() {
	items, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(items)
	s.Require().Empty(items)
}

func (s *RepositorySuite) TestList_CreationOrderRegardlessOfUpdates() {
	a := s.mustCreate("A", "")
	b := s.mustCreate("B", "")
	c := s.mustCreate("C", "")

	_, err := s.repo.Update(s.ctx, a.ID, "A edited", "x")
	s.Require().NoError(err)

	items, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal([]int64{a.ID, b.ID, c.ID}, ids(items))
	s.Require().Equal("A edited", items[0].Title)
}

func (s *RepositorySuite) TestMigrate_IdempotentKeepsData() {
	n := s.mustCreate("keep", "me")

	s.Require().NoError(Migrate(s.ctx, s.conn.SQL, s.conn.Dialect))
	s.Require().NoError(Migrate(s.ctx, s.conn.SQL, s.conn.Dialect))

	got, err := s.repo.Get(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Require().Equal("keep", got.Title)
}

func (s *RepositorySuite) TestNullColumnsReadAsEmpty() {
	_, err := s.conn.SQL.ExecContext(s.ctx, `INSERT INTO notes (title, content) VALUES (NULL, NULL)`)
	s.Require().NoError(err)

	items, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().Equal("", items[0].Title)
	s.Require().Equal("", items[0].Content)
}

func (s *RepositorySuite) TestConcurrentCreates_DistinctIDs() {
	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			note, err := s.repo.Create(s.ctx, "t", "c")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[note.ID] = true
		}()
	}
	wg.Wait()

	s.Require().Empty(errs)
	s.Require().Len(seen, n)
}

func (s *RepositorySuite) TestStorageFailureIsClassified() {
	s.Require().NoError(s.conn.SQL.Close())

	_, err := s.repo.List(s.ctx)
	var se *StorageError
	s.Require().True(errors.As(err, &se))
	s.Require().Equal("list", se.Op)

	_, err = s.repo.Create(s.ctx, "t", "c")
	s.Require().True(errors.As(err, &se))
	s.Require().Equal("create", se.Op)

	_, err = s.repo.Get(s.ctx, 1)
	s.Require().False(errors.Is(err, ErrNotFound))
	s.Require().True(errors.As(err, &se))
}

func TestMigrate_UnknownDialect(t *testing.T) {
	conn, err := db.Open(context.Background(), ":memory:", 1, 1, 0, 0)
	require.NoError(t, err)
	defer conn.SQL.Close()

	require.Error(t, Migrate(context.Background(), conn.SQL, db.Dialect("oracle")))
}
