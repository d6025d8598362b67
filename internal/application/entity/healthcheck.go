package entity

// RootResponse ответ GET /
type RootResponse struct {
	Message string `json:"message" example:"Welcome to the Event Planner API!"`
	Version string `json:"version" example:"0.3.1"`
}

// HealthCheckResponse структура ответа для health check
type HealthCheckResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store,omitempty" example:"firestore"`
	Error  string `json:"error,omitempty" example:"store unavailable"`
}

// ErrorResponse тело ошибки
type ErrorResponse struct {
	Detail string   `json:"detail" example:"Event not found"`
	Errors []string `json:"errors,omitempty"`
}
