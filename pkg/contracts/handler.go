package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain handler that contributes routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
