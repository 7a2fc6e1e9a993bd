package typemap

import (
	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/models"
)

// TypeMapper defines the interface for mapping collected functions onto
// proxy stubs
type TypeMapper interface {
	Classify(tree *ast.Tree, q ast.QualType) (models.Passing, error)
	MapFunction(fd *models.FunctionDescriptor) (*models.ProxyStub, error)
}
