package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
	"github.com/campushq/enrollment-api/pkg/export"
	"github.com/campushq/enrollment-api/pkg/jobs"
	"github.com/campushq/enrollment-api/pkg/storage"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// Export job kinds.
const (
	ExportKindAssessment = "assessment"
	ExportKindSchedule   = "schedule"
)

// ExportService renders tuition assessments and weekly schedules to files,
// generated asynchronously on a worker queue and served through signed
// download tokens. Jobs are tracked in memory: exports are short-lived
// conveniences for the portal UI, regenerated on demand.
type ExportService struct {
	enrollments *EnrollmentService
	tuition     *TuitionService
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	queue       jobDispatcher
	logger      *zap.Logger

	mu      sync.Mutex
	tracked map[string]*models.ExportJob
}

// NewExportService constructs ExportService. The queue is attached after
// construction because the queue's handler is this service's Process method.
func NewExportService(enrollments *EnrollmentService, tuition *TuitionService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		tuition:     tuition,
		pdf:         export.NewPDFExporter(),
		csv:         export.NewCSVExporter(),
		store:       store,
		signer:      signer,
		logger:      logger,
		tracked:     make(map[string]*models.ExportJob),
	}
}

// AttachQueue wires the dispatcher used for asynchronous processing.
func (s *ExportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob registers an export job and enqueues it for processing.
func (s *ExportService) CreateJob(studentID, kind string) (*models.ExportJob, error) {
	if studentID == "" {
		return nil, appErrors.ErrInvalidStudent
	}
	var format models.ExportFormat
	switch kind {
	case ExportKindAssessment:
		format = models.ExportFormatPDF
	case ExportKindSchedule:
		format = models.ExportFormatCSV
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export kind %q", kind))
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue not running")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Kind:      kind,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.tracked[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: kind, Payload: studentID}); err != nil {
		s.fail(job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// GetJob returns job metadata for status polling.
func (s *ExportService) GetJob(id string) (*models.ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Process is the queue handler: it renders the document, stores it, and
// publishes a signed download URL on the job.
func (s *ExportService) Process(ctx context.Context, job jobs.Job) error {
	studentID, _ := job.Payload.(string)
	s.setStatus(job.ID, models.ExportStatusRunning)

	var (
		data     []byte
		filename string
		err      error
	)
	switch job.Type {
	case ExportKindAssessment:
		data, err = s.renderAssessment(ctx, studentID)
		filename = path.Join("assessments", fmt.Sprintf("%s-%s.pdf", studentID, job.ID))
	case ExportKindSchedule:
		data, err = s.renderSchedule(studentID)
		filename = path.Join("schedules", fmt.Sprintf("%s-%s.csv", studentID, job.ID))
	default:
		s.fail(job.ID, fmt.Sprintf("unknown export type %q", job.Type))
		return nil
	}
	if err != nil {
		s.fail(job.ID, err.Error())
		return err
	}

	if _, err := s.store.Save(filename, data); err != nil {
		s.fail(job.ID, "failed to store export")
		return err
	}

	token, _, err := s.signer.Generate(job.ID, filename)
	if err != nil {
		s.fail(job.ID, "failed to sign download token")
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if tracked, ok := s.tracked[job.ID]; ok {
		tracked.Status = models.ExportStatusCompleted
		tracked.FilePath = filename
		tracked.DownloadURL = "/api/v1/exports/" + token
		tracked.FinishedAt = &now
	}
	s.mu.Unlock()
	s.logger.Info("export completed", zap.String("job_id", job.ID), zap.String("kind", job.Type), zap.String("student_id", studentID))
	return nil
}

// ResolveDownload validates a signed token and opens the stored file.
func (s *ExportService) ResolveDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, path.Base(relPath), nil
}

// Cleanup removes stored exports older than the TTL and drops finished jobs
// whose files are gone.
func (s *ExportService) Cleanup(ttl time.Duration) {
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) == 0 {
		return
	}
	removed := make(map[string]struct{}, len(deleted))
	for _, rel := range deleted {
		removed[rel] = struct{}{}
	}
	s.mu.Lock()
	for id, job := range s.tracked {
		if _, gone := removed[job.FilePath]; gone {
			delete(s.tracked, id)
		}
	}
	s.mu.Unlock()
	s.logger.Info("export cleanup", zap.Int("deleted", len(deleted)))
}

func (s *ExportService) renderAssessment(ctx context.Context, studentID string) ([]byte, error) {
	breakdown, err := s.tuition.Assess(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Item", "Quantity", "Amount", "Subtotal"},
		Rows: []map[string]string{{
			"Item":     fmt.Sprintf("Tuition (%d units)", breakdown.TotalUnits),
			"Quantity": "1",
			"Amount":   breakdown.Tuition.StringFixed(2),
			"Subtotal": breakdown.Tuition.StringFixed(2),
		}},
	}
	for _, fee := range breakdown.Fees {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Item":     fee.Name,
			"Quantity": fmt.Sprintf("%d", fee.Quantity),
			"Amount":   fee.Amount.StringFixed(2),
			"Subtotal": fee.Subtotal.StringFixed(2),
		})
	}
	summary := []string{fmt.Sprintf("Total due: %s", breakdown.Total.StringFixed(2))}
	return s.pdf.Render(dataset, fmt.Sprintf("Tuition Assessment - %s", studentID), summary)
}

func (s *ExportService) renderSchedule(studentID string) ([]byte, error) {
	entries := s.enrollments.Schedule(studentID)
	dataset := export.Dataset{Headers: []string{"Day", "Course", "Start", "End", "Room"}}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":    entry.Day,
			"Course": entry.CourseCode,
			"Start":  entry.Start,
			"End":    entry.End,
			"Room":   entry.Room,
		})
	}
	return s.csv.Render(dataset)
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	if job, ok := s.tracked[id]; ok {
		job.Status = status
	}
	s.mu.Unlock()
}

func (s *ExportService) fail(id, message string) {
	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.tracked[id]; ok {
		job.Status = models.ExportStatusFailed
		job.Error = message
		job.FinishedAt = &now
	}
	s.mu.Unlock()
}

func (s *ExportService) snapshot(id string) *models.ExportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil
	}
	cp := *job
	return &cp
}
