package collector

import (
	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/models"
)

// DeclarationCollector selects the functions of a translation unit to proxy
// and gathers the types their signatures depend on
type DeclarationCollector interface {
	Collect(tree *ast.Tree) (*models.Collection, error)
}
