package api

import "github.com/listenupapp/bookcatalog/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth            *service.AuthService
	Catalog         *service.CatalogService
	Recommendations *service.RecommendationService
}
