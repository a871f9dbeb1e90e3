package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// DashboardStats are the counters shown on the admin dashboard.
type DashboardStats struct {
	TicketsByStatus map[domain.TicketStatus]int64
	TotalTickets    int64
	TotalUsers      int64
	TotalComments   int64
}

// StatsService aggregates store counters.
type StatsService struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	comments repository.CommentRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, users repository.UserRepository, comments repository.CommentRepository) *StatsService {
	return &StatsService{tickets: tickets, users: users, comments: comments}
}

// Dashboard collects the admin dashboard counters.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	stats := &DashboardStats{TicketsByStatus: byStatus}
	for _, n := range byStatus {
		stats.TotalTickets += n
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, storeError(err, "user")
	}
	if stats.TotalComments, err = s.comments.Count(ctx); err != nil {
		return nil, storeError(err, "comment")
	}
	return stats, nil
}

// TicketBacklog returns ticket counts keyed by status name.
func (s *StatsService) TicketBacklog(ctx context.Context) (map[string]int64, error) {
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(byStatus))
	for status, n := range byStatus {
		out[string(status)] = n
	}
	return out, nil
}
