package gcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestJobUpdates(t *testing.T) {
	now := time.Date(2026, time.October, 16, 14, 5, 0, 0, time.UTC)

	got := jobUpdates(models.ReportJobUpdate{Status: models.StatusFailed, ErrorDetails: "map phase: boom"}, now)
	assert.Equal(t, []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
		{Path: "errorDetails", Value: "map phase: boom"},
		{Path: "updatedAt", Value: now},
	}, got)

	got = jobUpdates(models.ReportJobUpdate{
		Status:     models.StatusCompleted,
		Strategy:   models.StatusChunked,
		ChunkCount: 3,
		ArchiveURI: "gs://reports/abc/report.md",
	}, now)
	assert.Len(t, got, 5)
	assert.Equal(t, "chunkCount", got[2].Path)
	assert.Equal(t, 3, got[2].Value)

	assert.Equal(t, []firestore.Update{{Path: "updatedAt", Value: now}}, jobUpdates(models.ReportJobUpdate{}, now))
}

func TestNewFirestoreClient_RequiresProject(t *testing.T) {
	_, err := NewFirestoreClient(context.Background(), "")
	assert.Error(t, err)
}

func TestCreateError(t *testing.T) {
	assert.NoError(t, createError("r-1", nil))

	err := createError("r-1", status.Error(codes.AlreadyExists, "document already exists"))
	assert.ErrorIs(t, err, ErrJobExists)
	assert.Contains(t, err.Error(), "r-1")

	cause := status.Error(codes.Unavailable, "backend down")
	err = createError("r-1", cause)
	assert.NotErrorIs(t, err, ErrJobExists)
	assert.True(t, errors.Is(err, cause))
}
