package app

import (
	notificationService "github.com/allisson/fulfillment/internal/notification/service"
	notificationUsecase "github.com/allisson/fulfillment/internal/notification/usecase"
)

// Dispatcher returns the notification dispatcher instance.
func (c *Container) Dispatcher() (notificationUsecase.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		c.dispatcher = c.initDispatcher()
	})
	return c.dispatcher, nil
}

// initDispatcher creates the notification dispatcher backed by the HTTP mailer.
func (c *Container) initDispatcher() notificationUsecase.Dispatcher {
	mailer := notificationService.NewHTTPMailer(c.config.EmailAPIURL, c.config.EmailAPIKey)
	return notificationUsecase.NewDispatcher(mailer, c.config.NotificationSendTimeout, c.Logger())
}
