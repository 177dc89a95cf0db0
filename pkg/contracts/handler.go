package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of routes mounted behind the application middleware.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// RoutesFunc lets a plain function serve as a Handler.
type RoutesFunc func(*httprouter.Router)

func (f RoutesFunc) RegisterRoutes(router *httprouter.Router) {
	f(router)
}
