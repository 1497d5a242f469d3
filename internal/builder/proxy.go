package builder

import (
	"fmt"

	"github.com/specialistvlad/tilecomp/internal/config"
	"github.com/specialistvlad/tilecomp/internal/datatype"
	"github.com/specialistvlad/tilecomp/internal/operation"
)

const kindGroup = "group"

// groupProxy stands for a node group until the group is expanded. It never
// reaches execution.
type groupProxy struct {
	sig operation.Signature
}

func newGroupProxy(grp *config.Group) (*groupProxy, error) {
	p := &groupProxy{}
	for _, e := range grp.Exposes {
		dt := datatype.Color
		if e.Type != "" {
			dt, _ = datatype.Parse(e.Type)
		}
		decl := operation.InputDecl{Name: e.Name, Type: dt}
		if e.Default != nil {
			c, err := toColor(*e.Default, dt)
			if err != nil {
				return nil, fmt.Errorf("group '%s' input '%s' default: %w", grp.Name, e.Name, err)
			}
			decl.Default = c
		}
		p.sig.Inputs = append(p.sig.Inputs, decl)
	}
	for _, r := range grp.Returns {
		p.sig.Outputs = append(p.sig.Outputs, operation.OutputDecl{Name: r.Name, Type: datatype.Color})
	}
	return p, nil
}

func (p *groupProxy) Kind() string                    { return kindGroup }
func (p *groupProxy) Signature() operation.Signature { return p.sig }

func (p *groupProxy) ExecutePixel(*operation.Color, int, int) {
	panic("builder: group proxy reached execution")
}
