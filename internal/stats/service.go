package stats

import (
	"context"
)

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	Charts(ctx context.Context) (*ChartData, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.repo.ListRows(ctx, false)
	if err != nil {
		return nil, err
	}
	out := Summarize(rows)
	return &out, nil
}

func (s *service) Charts(ctx context.Context) (*ChartData, error) {
	rows, err := s.repo.ListRows(ctx, true)
	if err != nil {
		return nil, err
	}
	out := Charts(rows)
	return &out, nil
}
