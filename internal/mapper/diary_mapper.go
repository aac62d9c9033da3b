package mapper

import (
	"magic-diary-be/internal/dto"
	"magic-diary-be/pkg/diary"
	"magic-diary-be/pkg/store"
)

type DiaryMapper struct{}

func NewDiaryMapper() *DiaryMapper {
	return &DiaryMapper{}
}

func (m *DiaryMapper) TurnToResponse(t store.Turn) dto.TurnResponse {
	return dto.TurnResponse{
		Id:             t.ID,
		UserText:       t.UserText,
		AssistantReply: t.AssistantReply,
		Pending:        t.Pending(),
		CreatedAt:      t.CreatedAt,
		ResolvedAt:     t.ResolvedAt,
	}
}

func (m *DiaryMapper) TurnsToResponse(turns []store.Turn) []dto.TurnResponse {
	out := make([]dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, m.TurnToResponse(t))
	}
	return out
}

func (m *DiaryMapper) SessionToResponse(s *diary.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{
		Id:        s.ID,
		Mode:      string(s.Mode()),
		Busy:      s.Orchestrator.Busy(),
		TurnCount: s.Orchestrator.TurnCount(),
		CreatedAt: s.CreatedAt,
	}
}

func (m *DiaryMapper) OutcomeToResponse(o diary.Outcome) *dto.SubmitEntryResponse {
	return &dto.SubmitEntryResponse{
		Turn:           m.TurnToResponse(o.Turn),
		Degraded:       o.Degraded,
		ShortCircuited: o.ShortCircuited,
		Discarded:      o.Discarded,
	}
}
