package app

import (
	"github.com/specialistvlad/tilecomp/internal/operations"
	"github.com/specialistvlad/tilecomp/internal/registry"
)

// coreModules is the list of operation modules compiled into the binary.
var coreModules = []registry.Module{
	&operations.Module{},
}
