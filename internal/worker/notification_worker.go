package worker

import "github.com/spec-kit/support-desk/internal/service"

// StartNotificationWorker subscribes the notification handlers to the event
// dispatcher. Mail is sent from the publishing goroutine.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
