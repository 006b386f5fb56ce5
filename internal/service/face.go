package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

type FaceRepositoryInterface interface {
	Upsert(ctx context.Context, record *domain.EmployeeFaceRecord) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.EmployeeFaceRecord, error)
	Delete(ctx context.Context, employeeID string) error
}

type EmployeeReader interface {
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
}

// FaceService enrolls and removes employee face embeddings.
type FaceService struct {
	faceRepo  FaceRepositoryInterface
	employees EmployeeReader
	provider  provider.Detector
	hub       ws.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewFaceService(
	faceRepo FaceRepositoryInterface,
	employees EmployeeReader,
	detector provider.Detector,
	logger *slog.Logger,
) *FaceService {
	return &FaceService{
		faceRepo:  faceRepo,
		employees: employees,
		provider:  detector,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *FaceService) WithPublisher(p ws.Publisher) *FaceService {
	s.hub = p
	return s
}

// Enroll stores an embedding for the employee, replacing any previous one.
func (s *FaceService) Enroll(ctx context.Context, employeeID string, embedding []float64) (*domain.EmployeeFaceRecord, error) {
	if len(embedding) == 0 {
		return nil, domain.ErrInvalidEmbedding
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	record := &domain.EmployeeFaceRecord{
		EmployeeID:   employeeID,
		Embedding:    embedding,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.faceRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("employee %s: store face: %w", employeeID, err)
	}

	s.logger.Info("face enrolled",
		"employee_id", employeeID,
		"dimension", record.Dimension(),
	)
	if s.hub != nil {
		s.hub.Publish(ws.EventFaceEnrolled, record)
	}
	return record, nil
}

// EnrollImage detects exactly one face in the image and enrolls its embedding.
func (s *FaceService) EnrollImage(ctx context.Context, employeeID string, imageBytes []byte) (*domain.EmployeeFaceRecord, error) {
	if s.provider == nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("no face detector configured"))
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	detectedFaces, err := s.provider.DetectFaces(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("employee %s: detect faces: %w", employeeID, err)
	}

	face, err := provider.SingleFace(detectedFaces)
	if err != nil {
		return nil, err
	}
	if len(face.Embedding) == 0 {
		return nil, domain.ErrInvalidEmbedding
	}

	s.logger.Debug("enrollment face detected",
		"employee_id", employeeID,
		"model", s.provider.Model(),
		"confidence", face.Confidence,
	)
	return s.Enroll(ctx, employeeID, face.Embedding)
}

func (s *FaceService) Get(ctx context.Context, employeeID string) (*domain.EmployeeFaceRecord, error) {
	return s.faceRepo.GetByEmployeeID(ctx, employeeID)
}

// Remove deletes an employee's face. Attendance history is kept.
func (s *FaceService) Remove(ctx context.Context, employeeID string) error {
	if err := s.faceRepo.Delete(ctx, employeeID); err != nil {
		return err
	}

	s.logger.Info("face removed", "employee_id", employeeID)
	if s.hub != nil {
		s.hub.Publish(ws.EventFaceRemoved, map[string]string{"employee_id": employeeID})
	}
	return nil
}
