package controllers

import "github.com/kendall-kelly/canteen-orders/services"

var (
	orderService      *services.OrderService
	sessionStore      services.SessionStore
	exportService     *services.ExportService
	operatorDirectory services.OperatorDirectory
)

// SetOrderService sets the engine used by the chat routes
func SetOrderService(s *services.OrderService) {
	orderService = s
}

// SetSessionStore sets where chat sessions are kept between turns
func SetSessionStore(s services.SessionStore) {
	sessionStore = s
}

// SetExportService sets the exporter; nil disables the export route
func SetExportService(s *services.ExportService) {
	exportService = s
}

// SetOperatorDirectory sets the lookup used to attribute exports
func SetOperatorDirectory(d services.OperatorDirectory) {
	operatorDirectory = d
}
