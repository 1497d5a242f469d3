// Package yamlcfg loads graph descriptions written in YAML. Param values are
// converted to cty values so operations decode them exactly as they decode
// HCL attributes.
package yamlcfg
