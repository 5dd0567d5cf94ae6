package gcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrJobExists is returned by Create when a job with the same report ID is
// already recorded, as happens when a trigger is retried.
var ErrJobExists = errors.New("report job already exists")

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// JobStore records report jobs in a Firestore collection keyed by report ID.
type JobStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewJobStore(client *firestore.Client, collection string) *JobStore {
	return &JobStore{client: client, collection: collection, now: time.Now}
}

// Create writes the initial record. It returns ErrJobExists if the report ID
// is already taken.
func (s *JobStore) Create(ctx context.Context, job *models.ReportJob) error {
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	_, err := s.client.Collection(s.collection).Doc(job.ReportID).Create(ctx, job)
	return createError(job.ReportID, err)
}

func createError(reportID string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrJobExists, reportID)
	default:
		return fmt.Errorf("failed to create report job %s: %w", reportID, err)
	}
}

// Update applies the non-empty fields of u and bumps updatedAt.
func (s *JobStore) Update(ctx context.Context, reportID string, u models.ReportJobUpdate) error {
	updates := jobUpdates(u, s.now())
	if _, err := s.client.Collection(s.collection).Doc(reportID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update report job %s: %w", reportID, err)
	}
	return nil
}

func jobUpdates(u models.ReportJobUpdate, now time.Time) []firestore.Update {
	var updates []firestore.Update
	if u.Status != "" {
		updates = append(updates, firestore.Update{Path: "status", Value: u.Status})
	}
	if u.Strategy != "" {
		updates = append(updates, firestore.Update{Path: "strategy", Value: u.Strategy})
	}
	if u.ChunkCount > 0 {
		updates = append(updates, firestore.Update{Path: "chunkCount", Value: u.ChunkCount})
	}
	if u.ErrorDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: u.ErrorDetails})
	}
	if u.ArchiveURI != "" {
		updates = append(updates, firestore.Update{Path: "archiveUri", Value: u.ArchiveURI})
	}
	return append(updates, firestore.Update{Path: "updatedAt", Value: now})
}
