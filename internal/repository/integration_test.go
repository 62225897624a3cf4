package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"skillswap-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL,
// applies the migrations and truncates all tables. Tests that need a
// real database are skipped when the variable is unset.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, file := range []string{"0001_init.sql", "0002_seed_skills.sql"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "migrations", file))
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(data), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.Exec(ctx, stmt)
			require.NoErrorf(t, err, "migration %s", file)
		}
	}

	_, err = db.Exec(ctx, `
		TRUNCATE messages, active_swaps, swap_requests,
			user_skills_offered, user_skills_wanted, users CASCADE
	`)
	require.NoError(t, err)

	return db
}

func createTestMember(t *testing.T, db *pgxpool.Pool, name string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, 'x')
	`, id, fmt.Sprintf("%s-%s@example.com", name, id[:8]), name)
	require.NoError(t, err)
	return id
}

func createTestSkill(t *testing.T, db *pgxpool.Pool, name string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(context.Background(), `
		INSERT INTO skills (id, name, category) VALUES ($1, $2, 'Test')
	`, id, name+"-"+id[:8])
	require.NoError(t, err)
	return id
}

func createPendingRequest(t *testing.T, db *pgxpool.Pool, repo *SwapRepository, requester, recipient string) *models.SwapRequest {
	t.Helper()

	now := time.Now()
	req := &models.SwapRequest{
		ID:             uuid.New().String(),
		RequesterID:    requester,
		RecipientID:    recipient,
		SkillOfferedID: createTestSkill(t, db, "offered"),
		SkillWantedID:  createTestSkill(t, db, "wanted"),
		Status:         models.SwapStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.CreateRequest(context.Background(), req))
	return req
}

func TestAcceptCreatesExactlyOneActiveSwap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSwapRepository(db)
	ctx := context.Background()

	requester := createTestMember(t, db, "requester")
	recipient := createTestMember(t, db, "recipient")
	req := createPendingRequest(t, db, repo, requester, recipient)

	first, err := repo.Accept(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, req.ID, first.SwapRequestID)
	assert.Equal(t, models.ActiveSwapStatusActive, first.Status)

	// A retry of the same accept must return the same swap, not a second one
	second, err := repo.Accept(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	err = db.QueryRow(ctx,
		`SELECT COUNT(*) FROM active_swaps WHERE swap_request_id = $1`, req.ID,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStatusAccepted, got.Status)
}

func TestAcceptRejectsNonPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSwapRepository(db)
	ctx := context.Background()

	requester := createTestMember(t, db, "requester")
	recipient := createTestMember(t, db, "recipient")
	req := createPendingRequest(t, db, repo, requester, recipient)

	require.NoError(t, repo.UpdateStatus(ctx, req.ID, models.SwapStatusRejected))

	_, err := repo.Accept(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBucketsAreDisjoint(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSwapRepository(db)
	ctx := context.Background()

	me := createTestMember(t, db, "me")
	other := createTestMember(t, db, "other")

	pending := createPendingRequest(t, db, repo, me, other)

	accepted := createPendingRequest(t, db, repo, other, me)
	_, err := repo.Accept(ctx, accepted)
	require.NoError(t, err)

	done := createPendingRequest(t, db, repo, me, other)
	_, err = repo.Accept(ctx, done)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, done, other, 5, nil))

	buckets, err := repo.ListBuckets(ctx, me)
	require.NoError(t, err)

	require.Len(t, buckets.Pending, 1)
	require.Len(t, buckets.Active, 1)
	require.Len(t, buckets.Completed, 1)

	assert.Equal(t, pending.ID, buckets.Pending[0].ID)
	assert.Equal(t, accepted.ID, buckets.Active[0].SwapRequestID)
	assert.Equal(t, done.ID, buckets.Completed[0].SwapRequestID)

	// No request shows up in more than one bucket
	seen := map[string]bool{buckets.Pending[0].ID: true}
	for _, s := range append(buckets.Active, buckets.Completed...) {
		assert.False(t, seen[s.SwapRequestID])
		seen[s.SwapRequestID] = true
	}
}

func TestListConversationOrderAndCursor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	alice := createTestMember(t, db, "alice")
	bob := createTestMember(t, db, "bob")
	carol := createTestMember(t, db, "carol")

	var ids []int64
	for i := 0; i < 7; i++ {
		sender, recipient := alice, bob
		if i%2 == 1 {
			sender, recipient = bob, alice
		}
		msg := &models.Message{
			SenderID:    sender,
			RecipientID: recipient,
			Content:     fmt.Sprintf("message %d", i),
		}
		require.NoError(t, repo.Create(ctx, msg))
		ids = append(ids, msg.ID)
	}
	// Noise from a third member must never appear
	require.NoError(t, repo.Create(ctx, &models.Message{
		SenderID: carol, RecipientID: alice, Content: "unrelated",
	}))

	// The first page holds the newest messages, ascending
	page, err := repo.ListConversation(ctx, alice, bob, 0, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, ids[2:], messageIDs(page))
	assert.True(t, sort.SliceIsSorted(page, func(i, j int) bool { return page[i].ID < page[j].ID }))

	// Paging back from the oldest id of the first page yields the rest
	rest, err := repo.ListConversation(ctx, alice, bob, page[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, ids[:2], messageIDs(rest))

	// Both members see the identical thread
	mirror, err := repo.ListConversation(ctx, bob, alice, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, messageIDs(page), messageIDs(mirror))
}

func messageIDs(msgs []models.Message) []int64 {
	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}
