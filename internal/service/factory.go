package service

import (
	"basegraph.app/scout/internal/retrieval"
	"basegraph.app/scout/internal/store"
)

type Services struct {
	turns     store.TurnStore
	retrieval retrieval.Service
}

func NewServices(turns store.TurnStore, retrievals retrieval.Service) *Services {
	return &Services{
		turns:     turns,
		retrieval: retrievals,
	}
}

func (s *Services) Retrieval() retrieval.Service {
	return s.retrieval
}

func (s *Services) Sessions() SessionService {
	return NewSessionService(s.turns, s.retrieval)
}
