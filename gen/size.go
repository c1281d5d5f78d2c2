// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// sizeOf returns the byte size of a scalar C type, 8 for unknown types.
func sizeOf(ctype string) int64 {
	switch ctype {
	case "float", "int", "unsigned int":
		return 4
	case "bool", "char":
		return 1
	}
	return 8
}

// popSizeCode returns the body of size_in_bytes of a population.
func popSizeCode(plan []AttrPlan) string {
	var sb strings.Builder
	sb.WriteString("size_t size_in_bytes = 0;\n")
	for _, ap := range plan {
		if ap.Locality == model.Global {
			sb.WriteString("size_in_bytes += sizeof(" + ap.CType + ");\t// " + ap.Name + "\n")
			continue
		}
		sb.WriteString("size_in_bytes += sizeof(std::vector< " + ap.CType + " >) + sizeof(" + ap.CType + ") * " + ap.Name + ".capacity();\t// " + ap.Name + "\n")
	}
	sb.WriteString("return size_in_bytes;\n")
	return sb.String()
}

// prjSizeCode returns the body of size_in_bytes of a projection: the
// connectivity then every attribute by locality and container depth.
func prjSizeCode(plan []AttrPlan, rp conn.Repr) string {
	var sb strings.Builder
	sb.WriteString("size_t size_in_bytes = 0;\n")
	sb.WriteString("// connectivity\nsize_in_bytes += static_cast< " + rp.CppType() + "* >(this)->size_in_bytes();\n")
	for _, ap := range plan {
		v := ap.Name
		switch {
		case ap.Locality == model.Global:
			sb.WriteString("size_in_bytes += sizeof(" + ap.CType + ");\t// " + v + "\n")
		case ap.Locality == model.SemiGlobal:
			sb.WriteString("size_in_bytes += sizeof(std::vector< " + ap.CType + " >) + sizeof(" + ap.CType + ") * " + v + ".capacity();\t// " + v + "\n")
		case !rp.GPU() && rp.Sliced() && rp.Format() == conn.FormatLIL:
			sb.WriteString("// " + v + "\nfor (auto sub = " + v + ".begin(); sub != " + v + ".end(); sub++) {\n")
			sb.WriteString("    for (auto it = sub->begin(); it != sub->end(); it++)\n")
			sb.WriteString("        size_in_bytes += sizeof(std::vector< " + ap.CType + " >) + sizeof(" + ap.CType + ") * it->capacity();\n}\n")
		case !rp.GPU() && rp.Format() == conn.FormatLIL:
			sb.WriteString("// " + v + "\nsize_in_bytes += sizeof(std::vector< std::vector< " + ap.CType + " > >);\n")
			sb.WriteString("for (auto it = " + v + ".begin(); it != " + v + ".end(); it++)\n")
			sb.WriteString("    size_in_bytes += sizeof(std::vector< " + ap.CType + " >) + sizeof(" + ap.CType + ") * it->capacity();\n")
		default:
			sb.WriteString("size_in_bytes += sizeof(std::vector< " + ap.CType + " >) + sizeof(" + ap.CType + ") * " + v + ".capacity();\t// " + v + "\n")
		}
	}
	sb.WriteString("return size_in_bytes;\n")
	return sb.String()
}

// popBytes estimates the host memory of a population.
func popBytes(pp *Population, plan []AttrPlan) int64 {
	var n int64
	for _, ap := range plan {
		if ap.Locality == model.Global {
			n += sizeOf(ap.CType)
			continue
		}
		n += int64(pp.Size) * sizeOf(ap.CType)
	}
	if pp.Delayed() {
		for _, v := range pp.DelayedVars {
			if ap, ok := Find(plan, v); ok {
				n += int64(pp.MaxDelay) * int64(pp.Size) * sizeOf(ap.CType)
			}
		}
	}
	return n
}

// prjBytes estimates the host memory of a projection: attributes plus one
// int per synapse and per row for the forward arrays, and the inverse.
func prjBytes(pj *Projection, plan []AttrPlan, rp conn.Repr) int64 {
	if pj.Matrix == nil {
		return 0
	}
	syn := int64(pj.Matrix.NbSynapses())
	rows := int64(pj.Matrix.NbRows())
	n := 4 * (syn + 2*rows)
	if rp.Inverse() {
		n += 4 * (2*syn + int64(pj.Pre.Size) + 1)
	}
	for _, ap := range plan {
		switch ap.Locality {
		case model.Local:
			n += syn * sizeOf(ap.CType)
		case model.SemiGlobal:
			n += rows * sizeOf(ap.CType)
		default:
			n += sizeOf(ap.CType)
		}
	}
	if pj.MaxDelay > 1 && !pj.UniformDelay() {
		n += 4 * syn
	}
	return n
}
