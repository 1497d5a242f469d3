// Package hclcfg loads graph descriptions written in HCL and translates them
// into the format-agnostic config.Model.
//
// A node block takes the operation kind and the node name as labels. Its
// attributes are operation params, except for the reserved `inputs`,
// `defaults` and `resize` attributes:
//
//	node "directional_blur" "streak" {
//	  iterations = 4
//	  distance   = 0.2
//	  inputs     = { image = node.plate.image }
//	}
package hclcfg
