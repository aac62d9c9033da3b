package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"magic-diary-be/internal/dto"
	"magic-diary-be/internal/mapper"
	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/internal/pkg/serverutils"
	"magic-diary-be/internal/repository/memory"
	"magic-diary-be/pkg/canvas"
	"magic-diary-be/pkg/diary"
	"magic-diary-be/pkg/events"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/recognition"
	"magic-diary-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const oneShotSessionID = "oneshot"

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Show(ctx context.Context, id string) (*dto.SessionResponse, error)
	SetMode(ctx context.Context, id string, req *dto.SetModeRequest) (*dto.SessionResponse, error)
	SubmitEntry(ctx context.Context, id string, req *dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error)
	SubmitRecognized(ctx context.Context, id string, text string) (*dto.SubmitEntryResponse, error)
	SubmitStrokes(ctx context.Context, id string, req *dto.SubmitStrokesRequest) error
	GetTurns(ctx context.Context, id string, mode string) (*dto.GetTurnsResponse, error)
	Reset(ctx context.Context, id string) error
	Export(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	OneShot(ctx context.Context, req *dto.OneShotRequest) (*dto.OneShotResponse, error)
	Exists(id string) bool
}

type sessionService struct {
	repo        *memory.SessionRepository
	provider    llm.LLMProvider
	recognizer  recognition.Provider
	sink        canvas.Sink
	publisher   events.Publisher
	settleDelay time.Duration
	mapper      *mapper.DiaryMapper
	logger      logger.ILogger
}

func NewSessionService(
	repo *memory.SessionRepository,
	provider llm.LLMProvider,
	recognizer recognition.Provider,
	sink canvas.Sink,
	publisher events.Publisher,
	settleDelay time.Duration,
	log logger.ILogger,
) ISessionService {
	if publisher == nil {
		publisher = events.Nop
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &sessionService{
		repo:        repo,
		provider:    provider,
		recognizer:  recognizer,
		sink:        sink,
		publisher:   publisher,
		settleDelay: settleDelay,
		mapper:      mapper.NewDiaryMapper(),
		logger:      log,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	mode, err := store.ParseMode(req.Mode)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	id := uuid.NewString()
	orchestrator := diary.NewOrchestrator(id, store.NewConversation(), s.provider, s.publisher, s.logger)
	pipeline := canvas.NewPipeline(id, s.recognizer, s.sink, s.settleDelay, s.logger)
	session := diary.NewSession(id, mode, orchestrator, pipeline)
	s.repo.Save(session)

	s.logger.Info("SessionService", "Session created", map[string]interface{}{
		"session_id": id,
		"mode":       string(mode),
	})
	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) Show(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) SetMode(ctx context.Context, id string, req *dto.SetModeRequest) (*dto.SessionResponse, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}
	mode, err := store.ParseMode(req.Mode)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	session.SetMode(mode)
	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) SubmitEntry(ctx context.Context, id string, req *dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}
	outcome, err := session.Orchestrator.Submit(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return s.mapper.OutcomeToResponse(outcome), nil
}

// SubmitRecognized is the entry point for text coming off the canvas.
func (s *sessionService) SubmitRecognized(ctx context.Context, id string, text string) (*dto.SubmitEntryResponse, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), events.RecognitionCompleted(id, text)); err != nil {
		s.logger.Warn("SessionService", "Failed to publish recognition event", map[string]interface{}{
			"session_id": id,
			"error":      err,
		})
	}

	outcome, err := session.Orchestrator.Submit(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.mapper.OutcomeToResponse(outcome), nil
}

func (s *sessionService) SubmitStrokes(ctx context.Context, id string, req *dto.SubmitStrokesRequest) error {
	session, err := s.find(id)
	if err != nil {
		return err
	}

	snapshot := recognition.Snapshot{
		DeviceLines: req.TranscriptLines,
		StrokeCount: req.StrokeCount,
	}
	if req.ImageBase64 != "" {
		img, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "image_base64 must be base64 encoded")
		}
		snapshot.Image = img
	}

	session.Canvas.DrawingChanged(snapshot)
	return nil
}

func (s *sessionService) GetTurns(ctx context.Context, id string, mode string) (*dto.GetTurnsResponse, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}

	m := session.Mode()
	if mode != "" {
		if m, err = store.ParseMode(mode); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	return &dto.GetTurnsResponse{
		Mode:  string(m),
		Busy:  session.Orchestrator.Busy(),
		Turns: s.mapper.TurnsToResponse(session.Orchestrator.Turns(m)),
	}, nil
}

func (s *sessionService) Reset(ctx context.Context, id string) error {
	session, err := s.find(id)
	if err != nil {
		return err
	}
	session.Canvas.Cancel()
	session.Orchestrator.Reset(ctx)
	return nil
}

func (s *sessionService) Export(ctx context.Context, id string) (string, error) {
	session, err := s.find(id)
	if err != nil {
		return "", err
	}
	return session.Orchestrator.Export(), nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if !s.repo.Delete(id) {
		return fmt.Errorf("session %s: %w", id, serverutils.ErrNotFound)
	}
	s.logger.Info("SessionService", "Session deleted", map[string]interface{}{"session_id": id})
	return nil
}

// OneShot answers a single message with no history. Failures resolve to the
// single-shot fallback rather than an error.
func (s *sessionService) OneShot(ctx context.Context, req *dto.OneShotRequest) (*dto.OneShotResponse, error) {
	orchestrator := diary.NewOrchestrator(
		oneShotSessionID,
		store.NewConversation(),
		s.provider,
		events.Nop,
		s.logger,
		diary.WithFallback(diary.ReplyTroubleUnderstanding),
	)

	outcome, err := orchestrator.Submit(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return &dto.OneShotResponse{
		Reply:    outcome.Turn.Reply(),
		Degraded: outcome.Degraded,
	}, nil
}

func (s *sessionService) Exists(id string) bool {
	_, ok := s.repo.Get(id)
	return ok
}

func (s *sessionService) find(id string) (*diary.Session, error) {
	session, ok := s.repo.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, serverutils.ErrNotFound)
	}
	return session, nil
}
