package generator

import (
	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/models"
)

// HeaderGenerator defines the interface for turning declaration trees into a
// proxy header
type HeaderGenerator interface {
	Generate(tree *ast.Tree) (string, error)
	Collect(tree *ast.Tree) (*models.Collection, error)
	Emit(collection *models.Collection) (string, error)
}
