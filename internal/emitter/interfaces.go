package emitter

import "github.com/toyz/sapigen/internal/models"

// HeaderEmitter defines the interface for turning a collection into the
// text of a proxy header
type HeaderEmitter interface {
	Emit(collection *models.Collection) (string, error)
	EmitHeader(types *models.TypeSet, stubs []*models.ProxyStub) (string, error)
}
