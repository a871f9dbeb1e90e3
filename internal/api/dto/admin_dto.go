package dto

import "github.com/spec-kit/support-desk/internal/service"

// StatsResponse carries the admin dashboard counters.
type StatsResponse struct {
	TicketsByStatus map[string]int64 `json:"tickets_by_status"`
	TotalTickets    int64            `json:"total_tickets"`
	TotalUsers      int64            `json:"total_users"`
	TotalComments   int64            `json:"total_comments"`
}

// NewStatsResponse maps dashboard stats.
func NewStatsResponse(s *service.DashboardStats) StatsResponse {
	byStatus := make(map[string]int64, len(s.TicketsByStatus))
	for status, n := range s.TicketsByStatus {
		byStatus[string(status)] = n
	}
	return StatsResponse{
		TicketsByStatus: byStatus,
		TotalTickets:    s.TotalTickets,
		TotalUsers:      s.TotalUsers,
		TotalComments:   s.TotalComments,
	}
}

// SendEmailRequest payload for admin-composed mail.
type SendEmailRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	HTML    string `json:"html" validate:"required"`
}
