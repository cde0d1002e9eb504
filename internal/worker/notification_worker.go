package worker

import (
	"github.com/spec-kit/job-search-service/internal/service"
)

// StartNotificationWorker registers notification handlers on the shared dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
